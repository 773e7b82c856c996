package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"testing"
	"time"

	"newsdesk/internal/model"
	"newsdesk/internal/newsapi"
	"newsdesk/internal/vectorindex"
)

type fakeStore struct {
	ensured   bool
	nextResp  int64
	responses map[string]model.Response
	nextArt   int64
	articles  map[int64]model.Article
	byURI     map[string]int64
	embedded  map[int64]model.Embedding
	nextUser  int64
	users     map[string]model.User
	readings  map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		responses: map[string]model.Response{},
		articles:  map[int64]model.Article{},
		byURI:     map[string]int64{},
		embedded:  map[int64]model.Embedding{},
		users:     map[string]model.User{},
		readings:  map[string]bool{},
	}
}

func respKey(kw, ds, de string) string { return kw + "|" + ds + "|" + de }

func (f *fakeStore) Ensure(ctx context.Context) error { f.ensured = true; return nil }

func (f *fakeStore) SaveResponse(ctx context.Context, kw, ds, de string, rawReq, raw []byte) (int64, bool, error) {
	if r, ok := f.responses[respKey(kw, ds, de)]; ok {
		return r.ID, true, nil
	}
	f.nextResp++
	f.responses[respKey(kw, ds, de)] = model.Response{
		ID: f.nextResp, Keyword: kw, DateStart: ds, DateEnd: de,
		RawRequest: rawReq, Raw: raw, FetchedAt: time.Now(),
	}
	return f.nextResp, false, nil
}

func (f *fakeStore) ResponseID(ctx context.Context, kw, ds, de string) (int64, bool, error) {
	if r, ok := f.responses[respKey(kw, ds, de)]; ok {
		return r.ID, true, nil
	}
	return 0, false, nil
}

func (f *fakeStore) ResponseByID(ctx context.Context, id int64) (model.Response, error) {
	for _, r := range f.responses {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Response{}, fmt.Errorf("response %d not found", id)
}

func (f *fakeStore) Responses(ctx context.Context) ([]model.Response, error) {
	var out []model.Response
	for _, r := range f.responses {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) InsertArticles(ctx context.Context, responseID int64, arts []model.Article) (int, error) {
	inserted := 0
	for _, a := range arts {
		if a.URI == "" {
			continue
		}
		if _, ok := f.byURI[a.URI]; ok {
			continue
		}
		f.nextArt++
		a.ID = f.nextArt
		a.ResponseID = responseID
		f.articles[a.ID] = a
		f.byURI[a.URI] = a.ID
		inserted++
	}
	return inserted, nil
}

func (f *fakeStore) MissingEmbeddingsOn(ctx context.Context, date string) ([]model.Article, error) {
	var out []model.Article
	for _, a := range f.articles {
		if a.PublishedOn != date || a.Body == "" {
			continue
		}
		if _, ok := f.embedded[a.ID]; ok {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) EmbeddingsOn(ctx context.Context, date string) ([]model.Embedding, error) {
	var out []model.Embedding
	for id, e := range f.embedded {
		if f.articles[id].PublishedOn == date {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArticleID < out[j].ArticleID })
	return out, nil
}

func (f *fakeStore) SaveEmbedding(ctx context.Context, e model.Embedding) error {
	if _, ok := f.embedded[e.ArticleID]; !ok {
		f.embedded[e.ArticleID] = e
	}
	return nil
}

func (f *fakeStore) CreateUser(ctx context.Context, u model.User) (int64, bool, error) {
	if got, ok := f.users[u.Email]; ok {
		return got.ID, true, nil
	}
	f.nextUser++
	u.ID = f.nextUser
	f.users[u.Email] = u
	return u.ID, false, nil
}

func (f *fakeStore) UserByEmail(ctx context.Context, email string) (model.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return model.User{}, fmt.Errorf("user %s not found", email)
}

func (f *fakeStore) RandomArticleIDs(ctx context.Context, n int) ([]int64, error) {
	var ids []int64
	for id := range f.articles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids, nil
}

func (f *fakeStore) AddReading(ctx context.Context, userID, articleID int64) error {
	f.readings[fmt.Sprintf("%d:%d", userID, articleID)] = true
	return nil
}

type fakeMarks struct {
	marks map[string]int64
}

func newFakeMarks() *fakeMarks { return &fakeMarks{marks: map[string]int64{}} }

func (f *fakeMarks) IsFetched(ctx context.Context, kw, ds, de string) (int64, bool, error) {
	id, ok := f.marks[respKey(kw, ds, de)]
	return id, ok, nil
}

func (f *fakeMarks) MarkFetched(ctx context.Context, kw, ds, de string, id int64) error {
	f.marks[respKey(kw, ds, de)] = id
	return nil
}

type fakeNews struct {
	calls []string
}

func (f *fakeNews) GetArticles(ctx context.Context, req newsapi.SearchRequest) ([]byte, []byte, error) {
	f.calls = append(f.calls, req.Keyword+"|"+req.DateStart)
	raw := fmt.Sprintf(`{"articles":{"results":[{"uri":"%s-%s-1","title":"T1","body":"body about %s","date":"%s","url":"https://example.com/1"},{"uri":"%s-%s-2","title":"T2","body":"","date":"%s","url":"https://example.com/2"}],"totalResults":2}}`,
		req.Keyword, req.DateStart, req.Keyword, req.DateStart,
		req.Keyword, req.DateStart, req.DateStart)
	return []byte(raw), []byte(`{"action":"getArticles"}`), nil
}

type fakeEmbedder struct {
	dims  int
	calls int
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, f.dims)
		vec[0] = float32(len(t))
		out[i] = vec
	}
	return out, nil
}
func (f *fakeEmbedder) EmbeddingModel() string { return "fake-model" }
func (f *fakeEmbedder) Dimension() int         { return f.dims }

func newRunner(t *testing.T) (*Runner, *fakeStore, *fakeMarks, *fakeNews, *fakeEmbedder) {
	t.Helper()
	st := newFakeStore()
	marks := newFakeMarks()
	news := &fakeNews{}
	emb := &fakeEmbedder{dims: 4}
	r := &Runner{Store: st, Marks: marks, News: news, Embedder: emb, VectorDir: t.TempDir()}
	return r, st, marks, news, emb
}

func TestFetchStoresOncePerPair(t *testing.T) {
	r, st, marks, news, _ := newRunner(t)
	p := Params{Keywords: []string{"Technology", "Finance"}, Dates: []string{"2025-06-20"}, Count: 50}

	ids, err := r.Fetch(context.Background(), p)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	if len(news.calls) != 2 {
		t.Fatalf("news calls: %v", news.calls)
	}
	if len(st.responses) != 2 {
		t.Fatalf("stored responses: %d", len(st.responses))
	}

	// Second run hits the marks and never calls the API again.
	ids2, err := r.Fetch(context.Background(), p)
	if err != nil {
		t.Fatalf("Fetch again: %v", err)
	}
	if len(news.calls) != 2 {
		t.Errorf("news called again: %v", news.calls)
	}
	if len(ids2) != 2 || ids2[0] != ids[0] || ids2[1] != ids[1] {
		t.Errorf("ids changed across runs: %v vs %v", ids, ids2)
	}
	if len(marks.marks) != 2 {
		t.Errorf("marks: %v", marks.marks)
	}
}

func TestFetchFallsBackToDatabase(t *testing.T) {
	r, st, marks, news, _ := newRunner(t)
	// Row exists in the database but the mark is gone.
	st.SaveResponse(context.Background(), "Health", "2025-06-20", "2025-06-20", []byte("{}"), []byte("{}"))

	ids, err := r.Fetch(context.Background(), Params{Keywords: []string{"Health"}, Dates: []string{"2025-06-20"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(news.calls) != 0 {
		t.Errorf("API called for a stored pair: %v", news.calls)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ids: %v", ids)
	}
	// The mark is repopulated from the database hit.
	if _, ok := marks.marks[respKey("Health", "2025-06-20", "2025-06-20")]; !ok {
		t.Errorf("mark not repopulated: %v", marks.marks)
	}
}

func TestFetchValidatesParams(t *testing.T) {
	r, _, _, _, _ := newRunner(t)
	cases := []Params{
		{},
		{Keywords: []string{"x"}},
		{Dates: []string{"2025-06-20"}},
		{Keywords: []string{"x"}, Dates: []string{"June 20"}},
	}
	for i, p := range cases {
		if _, err := r.Fetch(context.Background(), p); err == nil {
			t.Errorf("case %d: expected error for %+v", i, p)
		}
	}
}

func TestProcessResponseInsertsAndDedupes(t *testing.T) {
	r, st, _, _, _ := newRunner(t)
	ids, err := r.Fetch(context.Background(), Params{Keywords: []string{"Technology"}, Dates: []string{"2025-06-20"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	n, err := r.ProcessResponse(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted %d, want 2", n)
	}
	// Re-processing the same response inserts nothing new.
	n2, err := r.ProcessResponse(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("ProcessResponse again: %v", err)
	}
	if n2 != 0 {
		t.Errorf("re-process inserted %d, want 0", n2)
	}
	if len(st.articles) != 2 {
		t.Errorf("articles: %d", len(st.articles))
	}
}

func TestIndexDateEmbedsAndWritesIndex(t *testing.T) {
	r, st, _, _, emb := newRunner(t)
	ids, _ := r.Fetch(context.Background(), Params{Keywords: []string{"Technology"}, Dates: []string{"2025-06-20"}})
	if _, err := r.ProcessResponse(context.Background(), ids[0]); err != nil {
		t.Fatalf("process: %v", err)
	}

	n, err := r.IndexDate(context.Background(), "2025-06-20")
	if err != nil {
		t.Fatalf("IndexDate: %v", err)
	}
	// Only the article with a body is embedded and indexed.
	if n != 1 {
		t.Errorf("indexed %d, want 1", n)
	}
	if len(st.embedded) != 1 {
		t.Errorf("stored embeddings: %d", len(st.embedded))
	}

	path := vectorindex.PathFor(r.VectorDir, "2025-06-20")
	idx, err := vectorindex.Load(path)
	if err != nil {
		t.Fatalf("Load index: %v", err)
	}
	if idx.Len() != 1 || idx.Dims() != emb.dims {
		t.Errorf("index: len=%d dims=%d", idx.Len(), idx.Dims())
	}

	// Re-indexing embeds nothing new but rewrites the file.
	calls := emb.calls
	if _, err := r.IndexDate(context.Background(), "2025-06-20"); err != nil {
		t.Fatalf("IndexDate again: %v", err)
	}
	if emb.calls != calls {
		t.Errorf("embedder called again for already-embedded articles")
	}
}

func TestIndexDateNothingToIndex(t *testing.T) {
	r, _, _, _, _ := newRunner(t)
	n, err := r.IndexDate(context.Background(), "2025-06-20")
	if err != nil {
		t.Fatalf("IndexDate: %v", err)
	}
	if n != 0 {
		t.Errorf("indexed %d, want 0", n)
	}
	if _, err := os.Stat(vectorindex.PathFor(r.VectorDir, "2025-06-20")); !os.IsNotExist(err) {
		t.Errorf("index file written for empty date")
	}
}

func TestSeedUsers(t *testing.T) {
	r, st, _, _, _ := newRunner(t)
	// Give the store some articles for the history.
	ids, _ := r.Fetch(context.Background(), Params{Keywords: []string{"Technology", "Finance"}, Dates: []string{"2025-06-20"}})
	for _, id := range ids {
		r.ProcessResponse(context.Background(), id)
	}

	if err := r.SeedUsers(context.Background()); err != nil {
		t.Fatalf("SeedUsers: %v", err)
	}
	if len(st.users) != 5 {
		t.Errorf("users: %d, want 5", len(st.users))
	}
	primary, err := st.UserByEmail(context.Background(), PrimaryUserEmail)
	if err != nil {
		t.Fatalf("primary user missing: %v", err)
	}
	history := 0
	for key := range st.readings {
		var uid, aid int64
		fmt.Sscanf(key, "%d:%d", &uid, &aid)
		if uid == primary.ID {
			history++
		}
	}
	if history == 0 {
		t.Errorf("primary user has no reading history")
	}

	// Re-seeding neither duplicates users nor fails.
	if err := r.SeedUsers(context.Background()); err != nil {
		t.Fatalf("SeedUsers again: %v", err)
	}
	if len(st.users) != 5 {
		t.Errorf("users after reseed: %d", len(st.users))
	}
}

func TestSeedUsersWithoutArticles(t *testing.T) {
	r, st, _, _, _ := newRunner(t)
	if err := r.SeedUsers(context.Background()); err != nil {
		t.Fatalf("SeedUsers with empty articles table: %v", err)
	}
	if len(st.users) != 5 {
		t.Errorf("users: %d", len(st.users))
	}
}

func TestRunFullPipeline(t *testing.T) {
	r, st, _, news, _ := newRunner(t)
	p := Params{Keywords: []string{"Technology", "Finance"}, Dates: []string{"2025-06-20", "2025-06-21"}, Count: 50}

	if err := r.Run(context.Background(), p); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !st.ensured {
		t.Errorf("migrate stage skipped")
	}
	if len(news.calls) != 4 {
		t.Errorf("news calls: %v", news.calls)
	}
	if len(st.articles) != 8 {
		t.Errorf("articles: %d, want 8", len(st.articles))
	}
	if len(st.users) != 5 {
		t.Errorf("users: %d", len(st.users))
	}
	for _, date := range p.Dates {
		if _, err := os.Stat(vectorindex.PathFor(r.VectorDir, date)); err != nil {
			t.Errorf("missing index for %s: %v", date, err)
		}
	}
}
