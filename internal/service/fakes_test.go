package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/postlane/postlane/internal/model"
	"github.com/postlane/postlane/internal/repository"
	"github.com/postlane/postlane/internal/token"
)

// In-memory repository fakes shared by the service tests. They mirror the
// mongo implementations closely enough for the service-level semantics:
// idempotent deletes, sentinel not-found errors, ByEmail returning
// soft-deleted users.

type memUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		r.nextID++
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) ByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) ByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) List(_ context.Context, query model.UserListQuery) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.users {
		if u.IsDeleted {
			continue
		}
		if query.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(query.Name)) {
			continue
		}
		if query.Age > 0 && u.Age != query.Age {
			continue
		}
		if query.MinAge > 0 && u.Age < query.MinAge {
			continue
		}
		if query.MaxAge > 0 && u.Age > query.MaxAge {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id, name string, age int) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if name != "" {
		u.Name = name
	}
	if age > 0 {
		u.Age = age
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) SetPassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memUserRepo) SetVerified(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsVerified = true
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memUserRepo) SoftDeleteByID(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	now := time.Now()
	u.IsDeleted = true
	u.DeletedAt = &now
	u.UpdatedAt = now
	return nil
}

func (r *memUserRepo) Restore(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.IsDeleted = false
	u.DeletedAt = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memUserRepo) InactiveSince(_ context.Context, cutoff time.Time) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if !u.IsDeleted && u.UpdatedAt.Before(cutoff) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type memSessionRepo struct {
	sessions []*model.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{}
}

func (r *memSessionRepo) Create(_ context.Context, session *model.Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	cp := *session
	r.sessions = append(r.sessions, &cp)
	return nil
}

func (r *memSessionRepo) ByAccessToken(_ context.Context, accessToken string) (*model.Session, error) {
	for _, s := range r.sessions {
		if s.AccessToken == accessToken {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (r *memSessionRepo) ByRefreshToken(_ context.Context, refreshToken string) (*model.Session, error) {
	for _, s := range r.sessions {
		if s.RefreshToken == refreshToken {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (r *memSessionRepo) DeleteByAccessToken(_ context.Context, accessToken string) error {
	r.deleteWhere(func(s *model.Session) bool { return s.AccessToken == accessToken })
	return nil
}

func (r *memSessionRepo) DeleteByRefreshToken(_ context.Context, refreshToken string) error {
	r.deleteWhere(func(s *model.Session) bool { return s.RefreshToken == refreshToken })
	return nil
}

func (r *memSessionRepo) DeleteByUser(_ context.Context, userID string) error {
	r.deleteWhere(func(s *model.Session) bool { return s.UserID == userID })
	return nil
}

func (r *memSessionRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(func(s *model.Session) bool { return s.CreatedAt.Before(cutoff) }), nil
}

func (r *memSessionRepo) deleteWhere(match func(*model.Session) bool) int64 {
	var kept []*model.Session
	var deleted int64
	for _, s := range r.sessions {
		if match(s) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	r.sessions = kept
	return deleted
}

type memActionTokenRepo struct {
	tokens []*model.ActionToken
}

func newMemActionTokenRepo() *memActionTokenRepo {
	return &memActionTokenRepo{}
}

func (r *memActionTokenRepo) Create(_ context.Context, actionToken *model.ActionToken) error {
	actionToken.CreatedAt = time.Now()
	cp := *actionToken
	r.tokens = append(r.tokens, &cp)
	return nil
}

func (r *memActionTokenRepo) ByToken(_ context.Context, tokenString string) (*model.ActionToken, error) {
	for _, t := range r.tokens {
		if t.Token == tokenString {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrActionTokenNotFound
}

func (r *memActionTokenRepo) DeleteByToken(_ context.Context, tokenString string) error {
	r.deleteWhere(func(t *model.ActionToken) bool { return t.Token == tokenString })
	return nil
}

func (r *memActionTokenRepo) DeleteByUserAndKind(_ context.Context, userID, kind string) error {
	r.deleteWhere(func(t *model.ActionToken) bool { return t.UserID == userID && t.Kind == kind })
	return nil
}

func (r *memActionTokenRepo) DeleteByUser(_ context.Context, userID string) error {
	r.deleteWhere(func(t *model.ActionToken) bool { return t.UserID == userID })
	return nil
}

func (r *memActionTokenRepo) DeleteOlderThan(_ context.Context, kind string, cutoff time.Time) (int64, error) {
	return r.deleteWhere(func(t *model.ActionToken) bool {
		return t.Kind == kind && t.CreatedAt.Before(cutoff)
	}), nil
}

func (r *memActionTokenRepo) deleteWhere(match func(*model.ActionToken) bool) int64 {
	var kept []*model.ActionToken
	var deleted int64
	for _, t := range r.tokens {
		if match(t) {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	r.tokens = kept
	return deleted
}

func (r *memActionTokenRepo) byUserAndKind(userID, kind string) []*model.ActionToken {
	var out []*model.ActionToken
	for _, t := range r.tokens {
		if t.UserID == userID && t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

type memOldPasswordRepo struct {
	rows []*model.OldPassword
}

func newMemOldPasswordRepo() *memOldPasswordRepo {
	return &memOldPasswordRepo{}
}

func (r *memOldPasswordRepo) Create(_ context.Context, oldPassword *model.OldPassword) error {
	oldPassword.CreatedAt = time.Now()
	cp := *oldPassword
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memOldPasswordRepo) ByUser(_ context.Context, userID string) ([]model.OldPassword, error) {
	var out []model.OldPassword
	for _, p := range r.rows {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memOldPasswordRepo) DeleteByUser(_ context.Context, userID string) error {
	var kept []*model.OldPassword
	for _, p := range r.rows {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	r.rows = kept
	return nil
}

func (r *memOldPasswordRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*model.OldPassword
	var deleted int64
	for _, p := range r.rows {
		if p.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	r.rows = kept
	return deleted, nil
}

type memPostRepo struct {
	posts  map[string]*model.Post
	nextID int
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[string]*model.Post{}}
}

func (r *memPostRepo) Create(_ context.Context, post *model.Post) error {
	if post.ID == "" {
		r.nextID++
		post.ID = fmt.Sprintf("post-%d", r.nextID)
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *memPostRepo) ByID(_ context.Context, id string) (*model.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) ListByUser(_ context.Context, userID string, query model.PostListQuery) ([]model.Post, int64, error) {
	var out []model.Post
	for _, p := range r.posts {
		if p.UserID != userID {
			continue
		}
		if query.Title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(query.Title)) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *memPostRepo) UpdateByID(_ context.Context, id, title, text string) (*model.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	if title != "" {
		p.Title = title
	}
	if text != "" {
		p.Text = text
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) DeleteByID(_ context.Context, id string) error {
	delete(r.posts, id)
	return nil
}

// fakeHasher swaps bcrypt for a reversible marker so tests stay fast.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (fakeHasher) Compare(plaintext, hash string) bool {
	return hash == "hashed:"+plaintext
}

type sentEmail struct {
	Kind EmailKind
	To   string
	Ctx  EmailContext
}

type fakeEmail struct {
	sent []sentEmail
	fail bool
}

func (f *fakeEmail) Send(_ context.Context, kind EmailKind, to string, emailCtx EmailContext) error {
	if f.fail {
		return errors.New("delivery refused")
	}
	f.sent = append(f.sent, sentEmail{Kind: kind, To: to, Ctx: emailCtx})
	return nil
}

func (f *fakeEmail) last() sentEmail {
	return f.sent[len(f.sent)-1]
}

func testCodec() *token.Codec {
	return token.NewCodec(map[token.Kind]token.KindConfig{
		token.KindAccess:         {Secret: []byte("access-secret"), TTL: 15 * time.Minute},
		token.KindRefresh:        {Secret: []byte("refresh-secret"), TTL: 7 * 24 * time.Hour},
		token.KindForgotPassword: {Secret: []byte("forgot-secret"), TTL: time.Hour},
		token.KindVerifyEmail:    {Secret: []byte("verify-secret"), TTL: 24 * time.Hour},
		token.KindAccountRestore: {Secret: []byte("restore-secret"), TTL: time.Hour},
	})
}

type authFixture struct {
	users        *memUserRepo
	sessions     *memSessionRepo
	actionTokens *memActionTokenRepo
	oldPasswords *memOldPasswordRepo
	email        *fakeEmail
	svc          *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:        newMemUserRepo(),
		sessions:     newMemSessionRepo(),
		actionTokens: newMemActionTokenRepo(),
		oldPasswords: newMemOldPasswordRepo(),
		email:        &fakeEmail{},
	}
	f.svc = NewAuthService(f.users, f.sessions, f.actionTokens, f.oldPasswords, fakeHasher{}, testCodec(), f.email)
	return f
}
