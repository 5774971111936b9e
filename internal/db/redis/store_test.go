package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/listdex/listdex/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"UNKNOWN INDEX NAME", "unknown index name", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"exact", "exact", true},
		{"", "", true},
		{"notempty", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "listing:1"
		})).
		Return(mock.Result(mock.RedisInt64(2)))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "listing:1", map[string]string{"title": "x", "price": "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetBulk_AllSucceed(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(1)),
		})

	s := NewStoreForTest(c)
	outcomes, err := s.HSetBulk(context.Background(), []db.HashSetItem{
		{Key: "listing:1", Fields: map[string]string{"title": "a"}},
		{Key: "listing:2", Fields: map[string]string{"title": "b"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Errorf("key %s: unexpected error %v", o.Key, o.Err)
		}
	}
}

func TestHSetBulk_PerKeyServerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisError("WRONGTYPE Operation against a key holding the wrong kind of value")),
		})

	s := NewStoreForTest(c)
	outcomes, err := s.HSetBulk(context.Background(), []db.HashSetItem{
		{Key: "listing:1", Fields: map[string]string{"title": "a"}},
		{Key: "listing:2", Fields: map[string]string{"title": "b"}},
	})
	if err != nil {
		t.Fatalf("per-key rejection must not fail the batch: %v", err)
	}
	if outcomes[0].Err != nil {
		t.Errorf("listing:1 should succeed, got %v", outcomes[0].Err)
	}
	if outcomes[1].Err == nil {
		t.Error("listing:2 should carry its rejection")
	}
	if !isDBError(outcomes[1].Err) {
		t.Errorf("expected wrapped db.Error, got %v", outcomes[1].Err)
	}
}

func TestHSetBulk_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	outcomes, err := s.HSetBulk(context.Background(), []db.HashSetItem{
		{Key: "listing:1", Fields: map[string]string{"title": "a"}},
	})
	if err == nil {
		t.Fatal("transport failure must fail the batch")
	}
	if outcomes != nil {
		t.Errorf("no outcomes expected on transport failure, got %v", outcomes)
	}
}

func TestHSetBulk_Empty(t *testing.T) {
	s := NewStoreForTest(nil)
	outcomes, err := s.HSetBulk(context.Background(), nil)
	if err != nil || outcomes != nil {
		t.Fatalf("expected nil, nil; got %v, %v", outcomes, err)
	}
}

func TestDelBulk_Mixed(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(0)),
		})

	s := NewStoreForTest(c)
	outcomes, err := s.DelBulk(context.Background(), []string{"listing:1", "listing:2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 2 || outcomes[0].Err != nil || outcomes[1].Err != nil {
		t.Errorf("unexpected outcomes: %v", outcomes)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "listing:1")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"title": mock.RedisString("Гурток"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "listing:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["title"] != "Гурток" {
		t.Errorf("unexpected result: %v", m)
	}
}

func TestHGetAllMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("a"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("b"),
			})),
		})

	s := NewStoreForTest(c)
	results, err := s.HGetAllMulti(context.Background(), []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0]["f"] != "a" || results[1]["f"] != "b" {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "listing:1")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	exists, err := s.Exists(context.Background(), "listing:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

// --- index.go tests ---

func TestCreateIndex_Args(t *testing.T) {
	def := db.NewIndex("listings-idx").
		Prefix("listing:").
		Tag("status").
		Text("search_text").
		Numeric("rating").Sortable().
		Geo("geo").
		MustBuild()

	args, err := buildCreateArgs(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"listings-idx", "ON", "HASH",
		"PREFIX", "1", "listing:",
		"SCHEMA",
		"status", "TAG",
		"search_text", "TEXT",
		"rating", "NUMERIC", "SORTABLE",
		"geo", "GEO",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	def := db.NewIndex("listings-idx").Tag("status").MustBuild()
	if err := s.CreateIndex(context.Background(), def); !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "listings-idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "listings-idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestBuildFieldArgs_TagOpts(t *testing.T) {
	args, err := buildFieldArgs(&db.IndexField{
		Name: "sched", Type: db.IndexFieldTag, TagSeparator: ",", TagCaseSensitive: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"sched", "TAG", "SEPARATOR", ",", "CASESENSITIVE"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

// --- search.go tests ---

func TestSearch_SortByAndLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" &&
				contains(cmd, "SORTBY") && contains(cmd, "rating") && contains(cmd, "DESC") &&
				contains(cmd, "LIMIT")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("listing:1"),
			mock.RedisArray(
				mock.RedisString("title"),
				mock.RedisString("Гурток"),
			),
		)))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.ListQuery{
		Index:    "listings-idx",
		Query:    "@status:{open}",
		SortBy:   "rating",
		SortDesc: true,
		Offset:   0,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || len(res.Entries) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entries[0].Key != "listing:1" || res.Entries[0].Fields["title"] != "Гурток" {
		t.Errorf("unexpected entry: %+v", res.Entries[0])
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.ListQuery{
		Index: "listings-idx", Query: "*", Limit: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSearchCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && contains(cmd, "0")
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	s := NewStoreForTest(c)
	n, err := s.SearchCount(context.Background(), "listings-idx", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
}

// --- helpers ---

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
