package ioc

import "github.com/junioryono/ioc/internal/lifecycle"

// Disposable allows a singleton without a Destroyer to release resources on
// Close.
//
// Example:
//
//	type DatabaseConnection struct {
//	    ioc.BaseComponent
//	    conn *sql.DB
//	}
//
//	func (dc *DatabaseConnection) Close() error {
//	    return dc.conn.Close()
//	}
type Disposable = lifecycle.Disposable

// DisposableWithContext is the context-aware form of Disposable.
// Implementations should respect context cancellation for graceful shutdown.
//
// Example:
//
//	func (dc *DatabaseConnection) Close(ctx context.Context) error {
//	    done := make(chan error, 1)
//	    go func() {
//	        done <- dc.conn.Close()
//	    }()
//
//	    select {
//	    case err := <-done:
//	        return err
//	    case <-ctx.Done():
//	        return ctx.Err()
//	    }
//	}
type DisposableWithContext = lifecycle.DisposableWithContext
