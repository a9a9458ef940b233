package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sodaclicker/internal/app/ports"
	"sodaclicker/internal/domain/economy"
)

var ErrInvalidPlayerID = errors.New("invalid player id")

// saveFile is the on-disk envelope. The snapshot is kept verbatim so a file
// edited by hand goes through the same lenient parse as an imported save.
type saveFile struct {
	PlayerID  string          `json:"playerId"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Snapshot  json.RawMessage `json:"snapshot"`
}

// SaveRepo keeps one JSON file per player under dir.
type SaveRepo struct {
	mu  sync.Mutex
	dir string
}

func NewSaveRepo(dir string) (*SaveRepo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SaveRepo{dir: dir}, nil
}

func (r *SaveRepo) GetByPlayerID(ctx context.Context, playerID string) (ports.SaveRecord, error) {
	if err := ctx.Err(); err != nil {
		return ports.SaveRecord{}, err
	}
	path, err := r.path(playerID)
	if err != nil {
		return ports.SaveRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return readSave(path)
}

func (r *SaveRepo) SaveWithVersion(ctx context.Context, rec ports.SaveRecord, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := r.path(rec.PlayerID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := readSave(path)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
	case err != nil:
		return err
	case current.Version != expectedVersion:
		return ports.ErrConflict
	}

	snap, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(saveFile{
		PlayerID:  rec.PlayerID,
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt,
		Snapshot:  snap,
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, b)
}

func (r *SaveRepo) path(playerID string) (string, error) {
	id := strings.TrimSpace(playerID)
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", ErrInvalidPlayerID
	}
	return filepath.Join(r.dir, id+".json"), nil
}

func readSave(path string) (ports.SaveRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ports.SaveRecord{}, ports.ErrNotFound
		}
		return ports.SaveRecord{}, err
	}
	var f saveFile
	if err := json.Unmarshal(b, &f); err != nil {
		return ports.SaveRecord{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	snap, err := economy.ParseSnapshot(f.Snapshot)
	if err != nil {
		return ports.SaveRecord{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return ports.SaveRecord{
		PlayerID:  f.PlayerID,
		Snapshot:  snap,
		Version:   f.Version,
		UpdatedAt: f.UpdatedAt,
	}, nil
}

func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".save-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
