package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-blog-api/pkg/helpers"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type recordedJobs struct {
	mu   sync.Mutex
	jobs []any
}

func (r *recordedJobs) PublishJSON(_ context.Context, body any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, body)
	return nil
}

func (r *recordedJobs) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

type fakeIndex struct {
	indexed   map[int64]bool
	removed   []int64
	searchIDs []int64
	total     int
	err       error
}

func (f *fakeIndex) Index(_ context.Context, p *entity.Post) error {
	if f.indexed == nil {
		f.indexed = map[int64]bool{}
	}
	f.indexed[p.ID] = p.IsPublished
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id int64) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) ([]int64, int, error) {
	return f.searchIDs, f.total, f.err
}

type fakeCovers struct {
	path, contentType string
	body              []byte
	err               error
}

func (f *fakeCovers) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.path, f.contentType, f.body = objectPath, contentType, b
	return "https://storage.googleapis.com/covers-test/" + objectPath, nil
}

type fixture struct {
	store  *memory.Store
	jwt    *helpers.JWTManager
	jobs   *recordedJobs
	index  *fakeIndex
	covers *fakeCovers
	auth   *AuthService
	users  *UserService
	blogs  *BlogService
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := helpers.NewDiscardLogger()
	f := &fixture{
		store:  memory.NewStore(),
		jobs:   &recordedJobs{},
		index:  &fakeIndex{},
		covers: &fakeCovers{},
		now:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	jwtManager, err := helpers.NewJWTManager(testSecret, "HS256", 30*time.Minute, logger)
	require.NoError(t, err)
	jwtManager.Now = func() time.Time { return f.now }
	f.jwt = jwtManager

	hasher := helpers.NewBcryptHasher(4)
	notifier := &Notifier{Jobs: f.jobs, PostURLBase: "http://blog.test/blogs", Logger: logger}
	users, posts := f.store.Users(), f.store.Posts()

	f.auth, err = NewAuthService(users, hasher, jwtManager, logger)
	require.NoError(t, err)
	f.users = NewUserService(users, posts, f.store, hasher, f.index, notifier, logger)
	f.blogs = NewBlogService(posts, users, f.store, f.index, f.covers, notifier, logger)
	return f
}

func (f *fixture) register(t *testing.T, name, email string) *entity.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "Passw0rd1"})
	require.NoError(t, err)
	return u
}

func (f *fixture) draft(t *testing.T, owner *entity.User, title string) *entity.Post {
	t.Helper()
	p, err := f.blogs.Create(context.Background(), owner, CreatePostInput{Title: title, Content: "enough content for a post"})
	require.NoError(t, err)
	return p
}

var errStorage = errors.New("storage down")
