// Package memstore giữ toàn bộ state của STORAGE_DRIVER=memory trong một struct
// với một mutex duy nhất, để checkout/return thay đổi book và lending trong
// cùng một critical section (tương đương transaction của Postgres).
package memstore

import (
	"sync"

	auditModel "library-lending-backend/internal/domains/audit/model"
	bookModel "library-lending-backend/internal/domains/book/model"
	lendingModel "library-lending-backend/internal/domains/lending/model"
	readerModel "library-lending-backend/internal/domains/reader/model"

	"github.com/google/uuid"
)

type Store struct {
	Mu sync.RWMutex

	Books    map[uuid.UUID]*bookModel.Book
	Readers  map[uuid.UUID]*readerModel.Reader
	Lendings map[uuid.UUID]*lendingModel.Lending
	Audit    []auditModel.Entry
}

func New() *Store {
	return &Store{
		Books:    make(map[uuid.UUID]*bookModel.Book),
		Readers:  make(map[uuid.UUID]*readerModel.Reader),
		Lendings: make(map[uuid.UUID]*lendingModel.Lending),
	}
}

// BookSummary / ReaderSummary trả về nil khi entity không còn (dangling reference).
// Caller phải giữ Mu.

func (s *Store) BookSummary(id uuid.UUID) *bookModel.Summary {
	b, ok := s.Books[id]
	if !ok {
		return nil
	}
	sum := b.Summary()
	return &sum
}

func (s *Store) ReaderSummary(id uuid.UUID) *readerModel.Summary {
	r, ok := s.Readers[id]
	if !ok {
		return nil
	}
	sum := r.Summary()
	return &sum
}
