package idgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"hexagonal/domain/shared"
	"hexagonal/infrastructure/persistence/codec"
	"hexagonal/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memberKind struct{}

func (memberKind) IDKind() string { return "MemberID" }

type memberID = shared.NumericID[memberKind]

var memberCodec = codec.NewNumericIDCodec[memberKind]("member_id", codec.FormNative)

// fakeSequence 记录调用次数
type fakeSequence struct {
	calls int
	value int64
	err   error
	batch bool
}

func (s *fakeSequence) Name() string { return "fake_seq" }

func (s *fakeSequence) Next(context.Context) (int64, error) {
	s.calls++
	return s.value, s.err
}

func (s *fakeSequence) SupportsBatchInserts() bool { return s.batch }

func TestSequenceGeneratorDelegates(t *testing.T) {
	seq := &fakeSequence{value: 42}
	gen := NewSequenceGenerator[memberID](seq, memberCodec.FromStorage)

	id, err := gen.Generate(context.Background(), GenerationContext{Kind: "Member"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if id != shared.NewNumericID[memberKind](42) {
		t.Errorf("got %v, want 42", id)
	}
	if seq.calls != 1 {
		t.Errorf("expected exactly one sequence call, got %d", seq.calls)
	}

	if gen.SupportsBatchInserts() {
		t.Error("batch support must be forwarded from the sequence (false)")
	}
	seq.batch = true
	if !gen.SupportsBatchInserts() {
		t.Error("batch support must be forwarded from the sequence (true)")
	}
}

func TestSequenceGeneratorErrors(t *testing.T) {
	boom := errors.New("sequence down")
	gen := NewSequenceGenerator[memberID](&fakeSequence{err: boom}, memberCodec.FromStorage)
	if _, err := gen.Generate(context.Background(), GenerationContext{Kind: "Member"}); !errors.Is(err, boom) {
		t.Errorf("expected sequence error, got %v", err)
	}

	absent := func(any) (memberID, error) { return memberID{}, nil }
	gen = NewSequenceGenerator[memberID](&fakeSequence{value: 1}, absent)
	if _, err := gen.Generate(context.Background(), GenerationContext{Kind: "Member"}); !errors.Is(err, shared.ErrIllegalState) {
		t.Errorf("expected ErrIllegalState for absent value, got %v", err)
	}
}

func TestUUIDGenerator(t *testing.T) {
	gen := NewUUIDGenerator[memberKind]()
	seen := make(map[shared.UUIDID[memberKind]]bool)
	for i := 0; i < 100; i++ {
		id, err := gen.Generate(context.Background(), GenerationContext{})
		if err != nil || id.IsZero() {
			t.Fatalf("Generate = %v, %v", id, err)
		}
		if seen[id] {
			t.Fatalf("duplicate identifier %s", id)
		}
		seen[id] = true
	}
	if !gen.SupportsBatchInserts() {
		t.Error("local generation always supports batches")
	}
}

func TestMemorySequenceConcurrent(t *testing.T) {
	seq := NewMemorySequence("m", 1, 1)
	const workers, per = 8, 100

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				v, _ := seq.Next(context.Background())
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*per {
		t.Errorf("expected %d unique values, got %d", workers*per, len(seen))
	}
	if !seen[1] || !seen[workers*per] {
		t.Error("values must be 1..n")
	}
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seq.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&SequenceRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestTableSequenceBlocks(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	a := NewTableSequence(db, "member_seq", 1, 3)
	b := NewTableSequence(db, "member_seq", 1, 3)

	var got []int64
	for _, s := range []*TableSequence{a, a, b, a, b} {
		v, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, v)
	}

	// a reserves 1..3, b reserves 4..6
	want := []int64{1, 2, 4, 3, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	// a's block is exhausted: next reservation is 7..9
	if v, _ := a.Next(ctx); v != 7 {
		t.Errorf("expected 7 after exhausting block, got %d", v)
	}

	var row SequenceRow
	if err := db.Take(&row, "name = ?", "member_seq").Error; err != nil {
		t.Fatal(err)
	}
	if row.LastValue != 9 {
		t.Errorf("expected last_value 9, got %d", row.LastValue)
	}

	t.Log("✓ Table sequence block allocation passed")
}

func TestTableSequenceStart(t *testing.T) {
	db := openSQLite(t)
	s := NewTableSequence(db, "orders_seq", 1000, 10)
	if v, err := s.Next(context.Background()); err != nil || v != 1000 {
		t.Errorf("expected first value 1000, got %d, %v", v, err)
	}
}

type fakeRow struct {
	v   int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.v
	return nil
}

type fakeQuerier struct {
	sql  string
	args []any
	row  fakeRow
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return q.row
}

func TestPgxSequence(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{v: 77}}
	s := NewPgxSequence(q, "member_seq")

	v, err := s.Next(context.Background())
	if err != nil || v != 77 {
		t.Fatalf("Next = %d, %v", v, err)
	}
	if q.sql != "SELECT nextval($1)" || len(q.args) != 1 || q.args[0] != `"member_seq"` {
		t.Errorf("unexpected query %q %v", q.sql, q.args)
	}

	// 大小写混合的名字必须和 EnsurePgxSequence 建出来的序列是同一个
	mixed := NewPgxSequence(q, "Member_Seq")
	q.row = fakeRow{v: 1}
	if _, err := mixed.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if q.args[0] != `"Member_Seq"` || mixed.Name() != "Member_Seq" {
		t.Errorf("nextval must receive the quoted identifier, got %v", q.args[0])
	}

	q.row = fakeRow{err: pgx.ErrNoRows}
	if _, err := s.Next(context.Background()); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("expected wrapped driver error, got %v", err)
	}
}

func TestPgxSequenceLive(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	name := "hexagonal_test_member_seq"
	defer pool.Exec(ctx, "DROP SEQUENCE IF EXISTS "+pgx.Identifier{name}.Sanitize())
	if err := EnsurePgxSequence(ctx, pool, name, 10, 5); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// 第二次调用不能报错
	if err := EnsurePgxSequence(ctx, pool, name, 10, 5); err != nil {
		t.Fatalf("ensure twice: %v", err)
	}

	gen := NewSequenceGenerator[memberID](NewPgxSequence(pool, name), memberCodec.FromStorage)
	first, err := gen.Generate(ctx, GenerationContext{Kind: "Member"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := gen.Generate(ctx, GenerationContext{Kind: "Member"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first.Int64() != 10 || second.Int64() != 15 {
		t.Errorf("got %s, %s; want 10, 15", first, second)
	}
}

func TestRedisSequence(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	prefix := "hexagonal:test:" + t.Name() + ":"
	defer rdb.Del(ctx, prefix+"member_seq")

	a := NewRedisSequence(rdb, prefix, "member_seq", 1, 2)
	b := NewRedisSequence(rdb, prefix, "member_seq", 1, 2)

	got := make([]int64, 0, 4)
	for _, s := range []*RedisSequence{a, b, a, b} {
		v, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, v)
	}
	want := []int64{1, 3, 2, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInstrument(t *testing.T) {
	kind := "InstrumentTest"
	gen := Instrument[memberID](NewSequenceGenerator[memberID](NewMemorySequence("i", 1, 1), memberCodec.FromStorage), kind)

	for i := 0; i < 3; i++ {
		if _, err := gen.Generate(context.Background(), GenerationContext{Kind: kind}); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(metrics.IdentifiersGenerated.WithLabelValues(kind)); got != 3 {
		t.Errorf("expected 3 generated, got %v", got)
	}

	failing := Instrument[memberID](NewSequenceGenerator[memberID](&fakeSequence{err: errors.New("x")}, memberCodec.FromStorage), kind)
	_, _ = failing.Generate(context.Background(), GenerationContext{Kind: kind})
	if got := testutil.ToFloat64(metrics.IdentifierFailures.WithLabelValues(kind)); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if !gen.SupportsBatchInserts() {
		t.Error("batch support must be forwarded")
	}
}

func TestNewSequence(t *testing.T) {
	if _, err := NewSequence(SequenceConfig{Backend: "memory"}, Backends{}); err == nil {
		t.Error("missing name must fail")
	}
	if _, err := NewSequence(SequenceConfig{Backend: "table", Name: "s", Step: 1}, Backends{}); err == nil {
		t.Error("table backend without database must fail")
	}
	if _, err := NewSequence(SequenceConfig{Backend: "etcd", Name: "s", Step: 1}, Backends{}); err == nil {
		t.Error("unknown backend must fail")
	}
	seq, err := NewSequence(SequenceConfig{Backend: "memory", Name: "s", Start: 5, Step: 1}, Backends{})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := seq.Next(context.Background()); v != 5 {
		t.Errorf("expected 5, got %d", v)
	}
}
