package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Checklist хранит пункты сдачи работы: название -> выполнен ли.
// Сериализуется в jsonb.
type Checklist map[string]bool

func (c Checklist) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

func (c *Checklist) Scan(src interface{}) error {
	if src == nil {
		*c = Checklist{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("checklist: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, c)
}

// FileList хранит относительные пути загруженных файлов сдачи.
type FileList []string

func (f FileList) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

func (f *FileList) Scan(src interface{}) error {
	if src == nil {
		*f = FileList{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("file list: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, f)
}

// Delivery описывает одну (возможно частичную) сдачу работы по контракту.
// По одному контракту допускается несколько сдач, accepted ставит клиент.
type Delivery struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ContractID uuid.UUID  `db:"contract_id" json:"contract_id"`
	Checklist  Checklist  `db:"checklist" json:"checklist"`
	Files      FileList   `db:"files" json:"files"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	Accepted   bool       `db:"accepted" json:"accepted"`
	AcceptedAt *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
