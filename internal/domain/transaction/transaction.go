package transaction

import "context"

// Tx はアトミックな作業単位を表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit は作業単位を確定する
	Commit() error
	// Rollback は作業単位を破棄する
	Rollback() error
}

// Manager はトランザクションを開始するインターフェース
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}
