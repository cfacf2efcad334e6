package save

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"datafixer.ai/internal/datafix"
	"datafixer.ai/internal/nbt"
)

const FormatVersion = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	SavedAt int64  `json:"saved_at"`
}

// SaveV1 is a world save. Item stacks are stored as item compounds
// ({id, Count, Damage, tag}); empty slots are not stored.
type SaveV1 struct {
	Header Header `json:"header"`

	// Data holds named saved-data compounds, e.g. the fix version store.
	Data    map[string]*nbt.Compound `json:"data"`
	ModList map[string]string        `json:"mod_list"`

	Players  []PlayerV1 `json:"players"`
	Entities []EntityV1 `json:"entities"`
	Chunks   []ChunkV1  `json:"chunks"`
	// TileEntities carry their position in x, y and z and may hold nested
	// item compounds in Items.
	TileEntities []*nbt.Compound `json:"tile_entities"`
}

type PlayerV1 struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Inventory  []*nbt.Compound `json:"inventory"`
	EnderChest []*nbt.Compound `json:"ender_chest"`
}

type EntityV1 struct {
	UUID      string          `json:"uuid"`
	ID        string          `json:"id"`
	Equipment []*nbt.Compound `json:"equipment"`
}

type ChunkV1 struct {
	CX     int       `json:"cx"`
	CZ     int       `json:"cz"`
	Blocks []BlockV1 `json:"blocks"`
}

type BlockV1 struct {
	Pos  Pos    `json:"pos"`
	ID   string `json:"id"`
	Meta int16  `json:"meta"`
}

type Pos [3]int

// New returns an empty world marked as created with the current fix set.
func New(worldID string) SaveV1 {
	s := SaveV1{
		Header:  Header{Version: FormatVersion, WorldID: worldID},
		Data:    map[string]*nbt.Compound{},
		ModList: map[string]string{},
	}
	s.SetFixVersion(datafix.VersionNew)
	return s
}

// FixVersion returns the stored fix version, if any.
func (s *SaveV1) FixVersion() (int, bool) {
	data := s.Data[datafix.DataName]
	if !data.HasKey(datafix.DataKey, nbt.TypeInt) {
		return 0, false
	}
	return int(data.GetInt(datafix.DataKey)), true
}

func (s *SaveV1) SetFixVersion(v int) {
	if s.Data == nil {
		s.Data = map[string]*nbt.Compound{}
	}
	data := s.Data[datafix.DataName]
	if data == nil {
		data = nbt.NewCompound()
		s.Data[datafix.DataName] = data
	}
	data.SetInt(datafix.DataKey, int32(v))
}

func (s *SaveV1) Mods() datafix.ModList { return datafix.ModList(s.ModList) }

// TilePos reads the position of a tile-entity compound.
func TilePos(c *nbt.Compound) (Pos, bool) {
	for _, k := range []string{"x", "y", "z"} {
		if !c.HasKey(k, nbt.TypeInt) {
			return Pos{}, false
		}
	}
	return Pos{int(c.GetInt("x")), int(c.GetInt("y")), int(c.GetInt("z"))}, true
}

// TileEntityIndex maps positions to the tile entities stored at them.
func (s *SaveV1) TileEntityIndex() map[Pos]*nbt.Compound {
	idx := make(map[Pos]*nbt.Compound, len(s.TileEntities))
	for _, te := range s.TileEntities {
		if p, ok := TilePos(te); ok {
			idx[p] = te
		}
	}
	return idx
}

var errNilEntry = errors.New("nil compound entry")

func (s *SaveV1) check() error {
	for i, te := range s.TileEntities {
		if te == nil {
			return fmt.Errorf("tile_entities[%d]: %w", i, errNilEntry)
		}
	}
	for _, p := range s.Players {
		for i, it := range p.Inventory {
			if it == nil {
				return fmt.Errorf("player %s inventory[%d]: %w", p.ID, i, errNilEntry)
			}
		}
		for i, it := range p.EnderChest {
			if it == nil {
				return fmt.Errorf("player %s ender_chest[%d]: %w", p.ID, i, errNilEntry)
			}
		}
	}
	for _, e := range s.Entities {
		for i, it := range e.Equipment {
			if it == nil {
				return fmt.Errorf("entity %s equipment[%d]: %w", e.UUID, i, errNilEntry)
			}
		}
	}
	for name, c := range s.Data {
		if c == nil {
			return fmt.Errorf("data %q: %w", name, errNilEntry)
		}
	}
	return nil
}

// Write stores s at path: a JSON header line followed by the gob encoded
// save, zstd compressed. The file is replaced atomically.
func Write(path string, s SaveV1) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.Header.Version == 0 {
		s.Header.Version = FormatVersion
	}
	s.Header.SavedAt = time.Now().UTC().Unix()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, &s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encode(f *os.File, s *SaveV1) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(s.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(s); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func Read(path string) (SaveV1, error) {
	var s SaveV1
	f, err := os.Open(path)
	if err != nil {
		return s, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return s, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	if _, err := br.ReadBytes('\n'); err != nil {
		return s, fmt.Errorf("header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&s); err != nil {
		return s, fmt.Errorf("gob decode: %w", err)
	}
	if s.Header.Version != FormatVersion {
		return s, fmt.Errorf("unsupported save version %d", s.Header.Version)
	}
	if s.Data == nil {
		s.Data = map[string]*nbt.Compound{}
	}
	return s, nil
}

// ReadHeader decodes only the header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	return h, nil
}
