package cfheader

// MainNetCheckpoints returns the vetted rolling cfheader checkpoints for
// mainnet. Empty until a trusted list is populated; callers relying on
// defense-in-depth checkpoint verification should supply their own via
// Engine.WithCheckpoints until then.
func MainNetCheckpoints() []Checkpoint { return nil }

// TestNetCheckpoints returns the vetted rolling cfheader checkpoints for
// testnet. See MainNetCheckpoints.
func TestNetCheckpoints() []Checkpoint { return nil }

// SigNetCheckpoints returns the vetted rolling cfheader checkpoints for
// signet. See MainNetCheckpoints.
func SigNetCheckpoints() []Checkpoint { return nil }
