package history

import "time"

type Conversation struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID         string    `gorm:"type:varchar(26);index;not null" json:"session_id"`
	UserMessage       string    `gorm:"type:text;not null" json:"user_message"`
	AssistantResponse string    `gorm:"type:text" json:"assistant_response,omitempty"`
	StructuredQuery   string    `gorm:"type:text" json:"structured_query,omitempty"` // JSON snapshot
	CreatedAt         time.Time `json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

type Search struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID       string    `gorm:"type:varchar(26);index" json:"session_id"`
	QueryText       string    `gorm:"type:text;not null" json:"query_text"`
	StructuredQuery string    `gorm:"type:text" json:"structured_query,omitempty"` // JSON snapshot
	NumResults      int       `gorm:"not null" json:"num_results"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Search) TableName() string { return "searches" }

type CachedProduct struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Price       string    `gorm:"type:varchar(64)" json:"price,omitempty"`
	Link        string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"link"`
	Platform    string    `gorm:"type:varchar(128)" json:"platform,omitempty"`
	Image       string    `gorm:"type:varchar(1024)" json:"image,omitempty"`
	SearchQuery string    `gorm:"type:varchar(512);index" json:"search_query"`
	CachedAt    time.Time `gorm:"autoUpdateTime" json:"cached_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CachedProduct) TableName() string { return "products" }
