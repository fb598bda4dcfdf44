package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QueryAuditLog records one study query issued on behalf of a user
type QueryAuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(255);index" json:"user_id"`
	CallingAET  string    `gorm:"type:varchar(64);not null" json:"calling_aet"`
	Tab         string    `gorm:"type:varchar(32);not null" json:"tab"`
	Filter      JSON      `gorm:"type:jsonb" json:"filter,omitempty"`
	ResultCount int       `gorm:"not null" json:"result_count"`
	MoreResults bool      `gorm:"not null" json:"more_results"`
	Outcome     string    `gorm:"type:varchar(32);not null;index" json:"outcome"`
	Detail      string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (QueryAuditLog) TableName() string {
	return "query_audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Query outcomes
const (
	QueryOutcomeSuccess = "success"
	QueryOutcomeEmpty   = "empty"
	QueryOutcomeFailure = "failure"
	QueryOutcomeStale   = "stale"
)
