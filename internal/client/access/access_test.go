package access

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/permavault/internal/client/models"
	"github.com/dmitrijs2005/permavault/internal/client/storage"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/dmitrijs2005/permavault/internal/cryptox"
	"github.com/dmitrijs2005/permavault/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend plays the access service: it holds a verifier and releases
// the envelope only for a matching hash.
type fakeBackend struct {
	verifierSalt []byte
	verifierHash string
	grant        models.AccessGrant
	saltErr      error
	hashes       []string
}

func (b *fakeBackend) AccessSalt(context.Context, string) ([]byte, error) {
	if b.saltErr != nil {
		return nil, b.saltErr
	}
	return b.verifierSalt, nil
}

func (b *fakeBackend) VerifyAccess(_ context.Context, _ string, hash string) (*models.AccessGrant, error) {
	b.hashes = append(b.hashes, hash)
	if !cryptox.HashEqual(hash, b.verifierHash) {
		return nil, common.ErrAuthentication
	}
	g := b.grant
	return &g, nil
}

type memStore struct {
	data   map[string][]byte
	limits []int64
}

func (m *memStore) Put(context.Context, []byte, []storage.Tag) (storage.Receipt, error) {
	return storage.Receipt{}, errors.New("read only")
}

func (m *memStore) Get(_ context.Context, id string, limit int64) ([]byte, error) {
	m.limits = append(m.limits, limit)
	d, ok := m.data[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func setup(t *testing.T, password string, plain []byte) (*fakeBackend, []byte) {
	t.Helper()
	sealed, err := cryptox.Encrypt(plain, []byte(password))
	require.NoError(t, err)

	vsalt := []byte("verifier-salt-16")
	b := &fakeBackend{
		verifierSalt: vsalt,
		verifierHash: cryptox.HashPassword([]byte(password), vsalt),
		grant: models.AccessGrant{
			FileName: "report.pdf",
			MimeType: "application/pdf",
			Envelope: cryptox.Envelope{Salt: sealed.Salt, IV: sealed.IV, Algorithm: sealed.Algorithm, Iterations: sealed.Iterations},
		},
	}
	return b, sealed.Ciphertext
}

func TestOpen_FromStore(t *testing.T) {
	b, ct := setup(t, "correct-horse", []byte("ten bytes!"))
	f, err := New(Deps{Backend: b, Store: &memStore{data: map[string][]byte{"tx1": ct}}, Logger: logging.NewNopLogger()}, "tx1")
	require.NoError(t, err)

	res, err := f.Open(context.Background(), []byte("correct-horse"))
	require.NoError(t, err)
	assert.Equal(t, "ten bytes!", string(res.Data))
	assert.Equal(t, "report.pdf", res.FileName)
	assert.Equal(t, StateDelivered, f.State())
	assert.Equal(t, []State{
		StateRequested, StatePasswordPrompted, StateVerifying, StateVerified,
		StateDownloading, StateDecrypting, StateDelivered,
	}, f.History())
}

func TestOpen_FromURL(t *testing.T) {
	b, ct := setup(t, "correct-horse", []byte("over http"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ipfs/cid", r.URL.Path)
		_, _ = w.Write(ct)
	}))
	defer srv.Close()
	b.grant.URL = srv.URL + "/ipfs/cid"

	f, err := New(Deps{Backend: b, HTTP: srv.Client(), Logger: logging.NewNopLogger()}, "cid")
	require.NoError(t, err)
	require.NoError(t, f.Prompt(context.Background()))

	res, err := f.Open(context.Background(), []byte("correct-horse"))
	require.NoError(t, err)
	assert.Equal(t, "over http", string(res.Data))
}

func TestOpen_StoreReadIsBounded(t *testing.T) {
	b, ct := setup(t, "correct-horse", []byte("ten bytes!"))

	store := &memStore{data: map[string][]byte{"tx1": ct}}
	f, err := New(Deps{Backend: b, Store: store, MaxSize: 1 << 10, Logger: logging.NewNopLogger()}, "tx1")
	require.NoError(t, err)
	_, err = f.Open(context.Background(), []byte("correct-horse"))
	require.NoError(t, err)

	dflt := &memStore{data: map[string][]byte{"tx1": ct}}
	f, err = New(Deps{Backend: b, Store: dflt, Logger: logging.NewNopLogger()}, "tx1")
	require.NoError(t, err)
	_, err = f.Open(context.Background(), []byte("correct-horse"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1<<10 + cryptox.TagSize}, store.limits)
	assert.Equal(t, []int64{100<<20 + cryptox.TagSize}, dflt.limits)
}

func TestOpen_WrongPasswordDeniedBeforeDownload(t *testing.T) {
	b, ct := setup(t, "correct-horse", []byte("secret"))
	store := &memStore{data: map[string][]byte{"tx1": ct}}
	f, err := New(Deps{Backend: b, Store: store, Logger: logging.NewNopLogger()}, "tx1")
	require.NoError(t, err)

	_, err = f.Open(context.Background(), []byte("wrong"))
	require.ErrorIs(t, err, common.ErrAuthentication)
	assert.Equal(t, "invalid password or corrupted file", err.Error())
	assert.Equal(t, StateDenied, f.State())
	assert.NotContains(t, f.History(), StateDownloading)

	// The hash sent is over the verifier salt, not the envelope salt.
	require.Len(t, b.hashes, 1)
	assert.Equal(t, cryptox.HashPassword([]byte("wrong"), b.verifierSalt), b.hashes[0])

	_, err = f.Open(context.Background(), []byte("correct-horse"))
	require.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestOpen_TamperedCiphertextDenied(t *testing.T) {
	b, ct := setup(t, "correct-horse", []byte("secret"))
	ct[0] ^= 0xff
	f, err := New(Deps{Backend: b, Store: &memStore{data: map[string][]byte{"tx1": ct}}, Logger: logging.NewNopLogger()}, "tx1")
	require.NoError(t, err)

	res, err := f.Open(context.Background(), []byte("correct-horse"))
	require.ErrorIs(t, err, common.ErrAuthentication)
	assert.Nil(t, res)
	assert.Equal(t, StateDenied, f.State())
	assert.Contains(t, f.History(), StateDecrypting)
}

func TestOpen_BackendUnavailableCanRetry(t *testing.T) {
	b, ct := setup(t, "correct-horse", []byte("secret"))
	b.saltErr = common.ErrNetwork
	f, err := New(Deps{Backend: b, Store: &memStore{data: map[string][]byte{"tx1": ct}}, Logger: logging.NewNopLogger()}, "tx1")
	require.NoError(t, err)

	_, err = f.Open(context.Background(), []byte("correct-horse"))
	require.ErrorIs(t, err, common.ErrNetwork)
	assert.Equal(t, StatePasswordPrompted, f.State())

	b.saltErr = nil
	res, err := f.Open(context.Background(), []byte("correct-horse"))
	require.NoError(t, err)
	assert.Equal(t, "secret", string(res.Data))
}

func TestOpen_MissingObject(t *testing.T) {
	b, _ := setup(t, "correct-horse", []byte("secret"))
	f, err := New(Deps{Backend: b, Store: &memStore{data: map[string][]byte{}}, Logger: logging.NewNopLogger()}, "tx1")
	require.NoError(t, err)

	_, err = f.Open(context.Background(), []byte("correct-horse"))
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, StateDownloading, f.State())
}

func TestNew_EmptyID(t *testing.T) {
	_, err := New(Deps{Logger: logging.NewNopLogger()}, "")
	require.ErrorIs(t, err, common.ErrValidation)
}
