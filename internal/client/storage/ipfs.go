package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/permavault/internal/common"
	shell "github.com/ipfs/go-ipfs-api"
)

// ipfsShell is the subset of *shell.Shell used here.
type ipfsShell interface {
	Add(r io.Reader, options ...shell.AddOpts) (string, error)
	Cat(path string) (io.ReadCloser, error)
	ID(peer ...string) (*shell.IdOutput, error)
}

// IPFSStore pins uploads on an IPFS node. Objects are addressed by CID and
// served through the configured gateway. IPFS has no object metadata, so
// tags are not stored with the content.
type IPFSStore struct {
	sh      ipfsShell
	gateway string
}

func NewIPFSStore(apiURL, gateway string) *IPFSStore {
	return &IPFSStore{sh: shell.NewShell(apiURL), gateway: strings.TrimRight(gateway, "/")}
}

// Ping checks that the node answers.
func (s *IPFSStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sh.ID(); err != nil {
		return fmt.Errorf("%w: ipfs node: %v", common.ErrNetwork, err)
	}
	return nil
}

func (s *IPFSStore) Put(ctx context.Context, data []byte, _ []Tag) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	cid, err := s.sh.Add(bytes.NewReader(data), shell.Pin(true), shell.CidVersion(1))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: ipfs add: %v", common.ErrNetwork, err)
	}
	return Receipt{ID: cid, URL: s.gateway + "/ipfs/" + cid}, nil
}

func (s *IPFSStore) Get(ctx context.Context, id string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := s.sh.Cat(id)
	if err != nil {
		return nil, fmt.Errorf("%w: ipfs cat %s: %v", common.ErrNetwork, id, err)
	}
	defer rc.Close()

	data, err := readLimited(rc, limit)
	if errors.Is(err, ErrTooLarge) {
		return nil, fmt.Errorf("ipfs %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ipfs read %s: %v", common.ErrNetwork, id, err)
	}
	return data, nil
}
