package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mailinglist/internal/apperror"
	"github.com/sakif/mailinglist/internal/model"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockSubscriberRepo keeps rows in a map keyed by email so duplicate
// handling matches the real store. It counts calls so tests can assert that
// validation failures never reach it.

type mockSubscriberRepo struct {
	rows      map[string]model.Subscriber
	order     []string
	nextID    int64
	inserts   int
	lists     int
	insertErr error
	listErr   error
}

func newMockRepo() *mockSubscriberRepo {
	return &mockSubscriberRepo{rows: make(map[string]model.Subscriber)}
}

func (m *mockSubscriberRepo) Insert(_ context.Context, s *model.Subscriber) error {
	m.inserts++
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.rows[s.Email]; ok {
		return apperror.DuplicateEmail()
	}
	m.nextID++
	s.ID = m.nextID
	m.rows[s.Email] = *s
	m.order = append(m.order, s.Email)
	return nil
}

func (m *mockSubscriberRepo) ListEmailsByInterest(_ context.Context, i model.Interest) ([]string, error) {
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var emails []string
	for _, email := range m.order {
		row := m.rows[email]
		if row.HasInterest(i) {
			emails = append(emails, email)
		}
	}
	return emails, nil
}

func (m *mockSubscriberRepo) Ping(context.Context) error { return nil }

func newTestService(t *testing.T) (*SignupService, *mockSubscriberRepo) {
	t.Helper()
	repo := newMockRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewSignupService(repo, logger), repo
}

// =========================================================================
// SIGNUP TESTS
// =========================================================================

func TestSignup_Success(t *testing.T) {
	svc, repo := newTestService(t)

	s, err := svc.Signup(context.Background(), SignupRequest{
		Name:      "Ada",
		Email:     "ada@x.com",
		Interests: []string{"band", "choir"},
	})
	require.NoError(t, err)

	assert.NotZero(t, s.ID)
	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, "ada@x.com", s.Email)
	assert.True(t, s.Band)
	assert.True(t, s.Choir)
	assert.False(t, s.SummerMusical)
	assert.Equal(t, 1, repo.inserts)
}

func TestSignup_NonASCIIEmailAccepted(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name: "Zoë", Email: "zoë@müller.de", Interests: []string{"choir"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.inserts)
}

func TestSignup_LogsOmitEmail(t *testing.T) {
	var buf bytes.Buffer
	repo := newMockRepo()
	svc := NewSignupService(repo, slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()
	req := SignupRequest{Name: "Ada", Email: "ada@x.com", Interests: []string{"band"}}

	_, err := svc.Signup(ctx, req)
	require.NoError(t, err)
	_, err = svc.Signup(ctx, req)
	require.Error(t, err)
	repo.insertErr = errors.New("disk I/O error")
	_, err = svc.Signup(ctx, SignupRequest{Name: "Bob", Email: "bob@x.com", Interests: []string{"choir"}})
	require.Error(t, err)
	_, err = svc.Signup(ctx, SignupRequest{Name: "Cy", Email: "cy@x", Interests: []string{"choir"}})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "subscriber created")
	assert.Contains(t, out, "band=true")
	assert.Contains(t, out, "field=email")
	for _, email := range []string{"ada@x.com", "bob@x.com", "cy@x"} {
		assert.NotContains(t, out, email)
	}
}

func TestSignup_TrimsName(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name: "  Ada Lovelace  ", Email: "ada@x.com", Interests: []string{"choir"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", repo.rows["ada@x.com"].Name)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, repo := newTestService(t)
	req := SignupRequest{Name: "Ada", Email: "ada@x.com", Interests: []string{"band"}}

	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Equal(t, apperror.DuplicateEmailMessage, err.Error())
	assert.Len(t, repo.rows, 1)
}

func TestSignup_UnknownTagsIgnored(t *testing.T) {
	svc, repo := newTestService(t)

	s, err := svc.Signup(context.Background(), SignupRequest{
		Name: "Bob", Email: "bob@x.com", Interests: []string{"kazoo", "summerMusical", "Band"},
	})
	require.NoError(t, err)

	assert.False(t, s.Band)
	assert.False(t, s.Choir)
	assert.True(t, s.SummerMusical)
	assert.Equal(t, 1, repo.inserts)
}

func TestSignup_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantMsg string
	}{
		{
			name:    "missing name",
			req:     SignupRequest{Email: "ada@x.com", Interests: []string{"band"}},
			wantMsg: MsgRequiredFields,
		},
		{
			name:    "whitespace name",
			req:     SignupRequest{Name: "   ", Email: "ada@x.com", Interests: []string{"band"}},
			wantMsg: MsgRequiredFields,
		},
		{
			name:    "missing email",
			req:     SignupRequest{Name: "Ada", Interests: []string{"band"}},
			wantMsg: MsgRequiredFields,
		},
		{
			// required fields are checked before the email format
			name:    "missing name beats bad email",
			req:     SignupRequest{Email: "nope", Interests: nil},
			wantMsg: MsgRequiredFields,
		},
		{
			name:    "email without at",
			req:     SignupRequest{Name: "Ada", Email: "ada.x.com", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email without dot in domain",
			req:     SignupRequest{Name: "Ada", Email: "ada@x", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with whitespace",
			req:     SignupRequest{Name: "Ada", Email: "a da@x.com", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with two ats",
			req:     SignupRequest{Name: "Ada", Email: "a@d@x.com", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with empty local part",
			req:     SignupRequest{Name: "Ada", Email: "@x.com", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email ending in dot",
			req:     SignupRequest{Name: "Ada", Email: "ada@x.", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with vertical tab",
			req:     SignupRequest{Name: "Ada", Email: "a\vb@x.com", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with no-break space",
			req:     SignupRequest{Name: "Ada", Email: "a\u00a0b@x.com", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with em space in domain",
			req:     SignupRequest{Name: "Ada", Email: "ada@x\u2003y.com", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with ideographic space in tld",
			req:     SignupRequest{Name: "Ada", Email: "ada@x.c\u3000m", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with byte order mark",
			req:     SignupRequest{Name: "Ada", Email: "\ufeffada@x.com", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "email with line separator",
			req:     SignupRequest{Name: "Ada", Email: "ada@x.co\u2028m", Interests: []string{"band"}},
			wantMsg: MsgInvalidEmail,
		},
		{
			// email format is checked before interests
			name:    "bad email beats empty interests",
			req:     SignupRequest{Name: "Ada", Email: "bad", Interests: nil},
			wantMsg: MsgInvalidEmail,
		},
		{
			name:    "nil interests",
			req:     SignupRequest{Name: "Ada", Email: "ada@x.com"},
			wantMsg: MsgNoInterest,
		},
		{
			name:    "empty interests",
			req:     SignupRequest{Name: "Ada", Email: "ada@x.com", Interests: []string{}},
			wantMsg: MsgNoInterest,
		},
		{
			name:    "only unknown interests",
			req:     SignupRequest{Name: "Ada", Email: "ada@x.com", Interests: []string{"kazoo"}},
			wantMsg: MsgNoInterest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)

			_, err := svc.Signup(context.Background(), tt.req)

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation), "want ErrValidation, got %v", err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Zero(t, repo.inserts, "validation failure must not reach the store")
		})
	}
}

func TestSignup_StorageError(t *testing.T) {
	svc, repo := newTestService(t)
	repo.insertErr = errors.New("disk I/O error")

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name: "Ada", Email: "ada@x.com", Interests: []string{"band"},
	})

	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrValidation))
	assert.False(t, errors.Is(err, apperror.ErrConflict))
	_, isApp := apperror.Message(err)
	assert.False(t, isApp, "storage errors must not carry a user-facing message")
}

// =========================================================================
// EMAILS BY INTEREST TESTS
// =========================================================================

func TestEmailsByInterest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Name: "Ada", Email: "ada@x.com", Interests: []string{"band", "choir"}})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, SignupRequest{Name: "Bob", Email: "bob@x.com", Interests: []string{"choir"}})
	require.NoError(t, err)

	band, err := svc.EmailsByInterest(ctx, "band")
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@x.com"}, band)

	choir, err := svc.EmailsByInterest(ctx, "choir")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ada@x.com", "bob@x.com"}, choir)

	musical, err := svc.EmailsByInterest(ctx, "summerMusical")
	require.NoError(t, err)
	assert.NotNil(t, musical)
	assert.Empty(t, musical)
}

func TestEmailsByInterest_InvalidTag(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.EmailsByInterest(context.Background(), "not-a-tag")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Equal(t, MsgInvalidInterest, err.Error())
	assert.Zero(t, repo.lists, "an invalid tag must not be queried")
}

func TestEmailsByInterest_StorageError(t *testing.T) {
	svc, repo := newTestService(t)
	repo.listErr = errors.New("database is locked")

	_, err := svc.EmailsByInterest(context.Background(), "band")

	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrValidation))
}
