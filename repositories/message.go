package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shelter-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// seqBandwidth is the lease size for Badger sequences. A crash may burn
// up to this many ids; they stay strictly increasing either way.
const seqBandwidth = 64

// MessageRepository persists messages in BadgerDB.
// The key is formatted as "msg:{room_id}:{id_padded}" so that:
//  1. A prefix scan walks one room's messages in id order thanks to the
//     19-digit zero padding (lexicographical order).
//  2. Ids come from a per-room Badger sequence, which makes them strictly
//     increasing in persistence order within a room.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger

	mu   sync.Mutex
	seqs map[domain.RoomID]*badger.Sequence
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{
		db:   db,
		log:  log,
		seqs: make(map[domain.RoomID]*badger.Sequence),
	}
}

type diskMessage struct {
	ID         uint64    `json:"id"`
	Room       int       `json:"room"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Append durably records a message and assigns it the canonical id and
// timestamp. It is the only place in the system where either is assigned.
func (m *MessageRepository) Append(roomID domain.RoomID,
	sender domain.Identity, content string) (domain.Message, error) {
	seq, err := m.sequence(roomID)
	if err != nil {
		return domain.Message{}, err
	}
	next, err := seq.Next()
	if err != nil {
		return domain.Message{}, err
	}

	message := domain.Message{
		ID:         next + 1, // sequences start at 0, ids at 1
		Room:       roomID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	key := fmt.Sprintf("msg:%d:%019d", roomID, message.ID)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, err
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// History retrieves up to limit most recent messages for a room, ordered
// oldest to newest. The reverse prefix scan finds the newest entries
// first; the collected slice is flipped before returning.
func (m *MessageRepository) History(roomID domain.RoomID, limit int) ([]domain.Message, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%d:", roomID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the highest possible id, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(byteMessages) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var disk diskMessage
		if err = json.Unmarshal(b, &disk); err != nil {
			return nil, err
		}
		messages = append(messages, toMessage(disk))
	}
	return lo.Reverse(messages), nil
}

// Close releases the id sequences so unused leases return to the store.
func (m *MessageRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for roomID, seq := range m.seqs {
		if err := seq.Release(); err != nil {
			m.log.Warn("sequence release failed", "room", roomID, "error", err)
		}
	}
	m.seqs = make(map[domain.RoomID]*badger.Sequence)
	return nil
}

func (m *MessageRepository) sequence(roomID domain.RoomID) (*badger.Sequence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq, ok := m.seqs[roomID]; ok {
		return seq, nil
	}
	seq, err := m.db.GetSequence([]byte(fmt.Sprintf("seq:%d", roomID)), seqBandwidth)
	if err != nil {
		return nil, err
	}
	m.seqs[roomID] = seq
	return seq, nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:         message.ID,
		Room:       int(message.Room),
		SenderID:   message.SenderID,
		SenderName: message.SenderName,
		Content:    message.Content,
		CreatedAt:  message.CreatedAt,
	}
}

func toMessage(disk diskMessage) domain.Message {
	return domain.Message{
		ID:         disk.ID,
		Room:       domain.RoomID(disk.Room),
		SenderID:   disk.SenderID,
		SenderName: disk.SenderName,
		Content:    disk.Content,
		CreatedAt:  disk.CreatedAt,
	}
}
