package donor

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helplink/helplink/internal/platform/db"
)

func TestTxSourceUsesContextConn(t *testing.T) {
	r := &repoPG{pool: &pgxpool.Pool{}}

	pinned := &pgxpool.Conn{}
	ctx := context.WithValue(context.Background(), db.DBConnKey, pinned)

	if got := r.txSource(ctx); got != txBeginner(pinned) {
		t.Error("txSource must begin on the schema-pinned connection from context")
	}
	if got := r.conn(ctx); got != queryable(pinned) {
		t.Error("conn must route queries through the context connection")
	}
}

func TestTxSourceFallsBackToPool(t *testing.T) {
	pool := &pgxpool.Pool{}
	r := &repoPG{pool: pool}

	if got := r.txSource(context.Background()); got != txBeginner(pool) {
		t.Error("txSource must fall back to the pool without a context connection")
	}
}
