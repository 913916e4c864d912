package models

// OperatorAccount is the per-operator money state. Both balances stay >= 0;
// HeldBalance only decreases through settle or adjust, guarded by Revision.
type OperatorAccount struct {
	ID                  int64
	OperatorName        string
	HeldBalance         int64
	WithdrawableBalance int64
	Revision            int64
}
