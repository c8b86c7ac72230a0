package store

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/pebble"

	"chatsim/pkg/logger"
	"chatsim/pkg/models"
)

// Pebble persists snapshots to a local pebble database.
//
// Key layout:
//
//	roster:<pos>          contact JSON, zero-padded roster position
//	conv:<id>             conversation metadata JSON (messages excluded)
//	msg:<id>:<msgid>      message JSON, zero-padded sortable message id
//	meta:convorder        JSON list of conversation ids in display order
//	meta:counters         counters JSON
type Pebble struct {
	db   *pebble.DB
	path string
}

// OpenPebble opens (or creates) a pebble database at path.
func OpenPebble(path string) (*Pebble, error) {
	logger.Info("opening_pebble_db", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return nil, err
	}
	return &Pebble{db: db, path: path}, nil
}

// Close closes the underlying database.
func (p *Pebble) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	logger.Info("pebble_closed")
	return err
}

// Ready reports whether the store is opened.
func (p *Pebble) Ready() bool { return p != nil && p.db != nil }

// prefixEnd returns the exclusive upper bound for all keys starting with
// prefix.
func prefixEnd(prefix string) []byte {
	b := []byte(prefix)
	b[len(b)-1]++
	return b
}

// SaveAll rewrites the whole snapshot in one synced batch. The dataset is
// operator-scale (one person's simulated chats), so a full rewrite per
// mutation is cheaper than tracking dirty ranges.
func (p *Pebble) SaveAll(s *Snapshot) error {
	if p.db == nil {
		return fmt.Errorf("pebble not opened; call OpenPebble first")
	}
	b := p.db.NewBatch()
	defer b.Close()

	for _, pfx := range []string{"roster:", "conv:", "msg:"} {
		if err := b.DeleteRange([]byte(pfx), prefixEnd(pfx), nil); err != nil {
			return err
		}
	}

	for i, c := range s.Contacts {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal contact %s: %w", c.ID, err)
		}
		if err := b.Set([]byte(fmt.Sprintf("roster:%06d", i)), data, nil); err != nil {
			return err
		}
	}

	order := make([]string, 0, len(s.Conversations))
	for _, conv := range s.Conversations {
		order = append(order, conv.ID)
		meta := *conv
		meta.Messages = nil
		data, err := json.Marshal(&meta)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation %s: %w", conv.ID, err)
		}
		if err := b.Set([]byte("conv:"+conv.ID), data, nil); err != nil {
			return err
		}
		for _, m := range conv.Messages {
			md, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("failed to marshal message %d: %w", m.ID, err)
			}
			key := fmt.Sprintf("msg:%s:%020d", conv.ID, m.ID)
			if err := b.Set([]byte(key), md, nil); err != nil {
				return err
			}
		}
	}

	od, _ := json.Marshal(order)
	if err := b.Set([]byte("meta:convorder"), od, nil); err != nil {
		return err
	}
	cd, _ := json.Marshal(s.Counters)
	if err := b.Set([]byte("meta:counters"), cd, nil); err != nil {
		return err
	}

	if err := b.Commit(pebble.Sync); err != nil {
		logger.Error("snapshot_commit_failed", "error", err)
		return err
	}
	return nil
}

// LoadAll reads the persisted snapshot. A fresh database yields an empty
// snapshot, not an error.
func (p *Pebble) LoadAll() (*Snapshot, error) {
	if p.db == nil {
		return nil, fmt.Errorf("pebble not opened; call OpenPebble first")
	}
	out := &Snapshot{}

	if v, closer, err := p.db.Get([]byte("meta:counters")); err == nil {
		if err := json.Unmarshal(v, &out.Counters); err != nil {
			logger.Warn("counters_unmarshal_failed", "error", err)
		}
		closer.Close()
	}

	// roster, in stored position order
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: []byte("roster:"), UpperBound: prefixEnd("roster:")})
	if err != nil {
		return nil, err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		var c models.Contact
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			logger.Warn("contact_unmarshal_failed", "key", string(iter.Key()), "error", err)
			continue
		}
		out.Contacts = append(out.Contacts, c)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	var order []string
	if v, closer, err := p.db.Get([]byte("meta:convorder")); err == nil {
		if err := json.Unmarshal(v, &order); err != nil {
			logger.Warn("convorder_unmarshal_failed", "error", err)
		}
		closer.Close()
	}
	for _, id := range order {
		conv, err := p.loadConversation(id)
		if err != nil {
			logger.Warn("conversation_load_failed", "id", id, "error", err)
			continue
		}
		out.Conversations = append(out.Conversations, conv)
	}
	return out, nil
}

func (p *Pebble) loadConversation(id string) (*models.Conversation, error) {
	v, closer, err := p.db.Get([]byte("conv:" + id))
	if err != nil {
		return nil, err
	}
	var conv models.Conversation
	uerr := json.Unmarshal(v, &conv)
	closer.Close()
	if uerr != nil {
		return nil, uerr
	}

	pfx := "msg:" + id + ":"
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: []byte(pfx), UpperBound: prefixEnd(pfx)})
	if err != nil {
		return nil, err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Warn("message_unmarshal_failed", "key", string(iter.Key()), "error", err)
			continue
		}
		conv.Messages = append(conv.Messages, &m)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return &conv, nil
}

// DiskSize returns the best-effort on-disk size of the database directory.
func (p *Pebble) DiskSize() uint64 {
	if p.path == "" {
		return 0
	}
	var total uint64
	_ = filepath.WalkDir(p.path, func(fp string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(fp, ".lock") {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	return total
}
