package art

import "time"

// Art is an uploaded artwork. UserID is the owner and never changes.
type Art struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"ownerId" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CategoryID  int64     `json:"categoryId" gorm:"not null;index"`
	FileRef     string    `json:"-" gorm:"column:file_ref"`
	FileName    string    `json:"-" gorm:"column:file_name"`
	ContentType string    `json:"-" gorm:"column:content_type"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Art) TableName() string { return "arts" }

func (a *Art) HasImage() bool { return a.FileRef != "" }

// Category is read-only for this service.
type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:50;not null;uniqueIndex"`
}

func (Category) TableName() string { return "art_categories" }

// Like is unique per (user, art) through its composite primary key. The
// foreign key rejects a like for an artwork that no longer exists.
type Like struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"`
	ArtID     int64     `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"not null;index"`
	Art       *Art      `json:"-" gorm:"foreignKey:ArtID;constraint:OnDelete:CASCADE"`
}

func (Like) TableName() string { return "art_likes" }

// Masterpiece is one slot of an artist's showcase. Sequences are 0..n-1.
type Masterpiece struct {
	UserID   int64 `gorm:"primaryKey;autoIncrement:false;uniqueIndex:idx_masterpiece_sequence,priority:1"`
	ArtID    int64 `gorm:"primaryKey;autoIncrement:false;index"`
	Sequence int   `gorm:"not null;uniqueIndex:idx_masterpiece_sequence,priority:2"`
	Art      *Art  `json:"-" gorm:"foreignKey:ArtID;constraint:OnDelete:CASCADE"`
}

func (Masterpiece) TableName() string { return "masterpieces" }

// Models lists every table this package owns, in migration order.
func Models() []interface{} {
	return []interface{}{&Category{}, &Art{}, &Like{}, &Masterpiece{}}
}

// ArtSummary is the list view of an artwork.
type ArtSummary struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	CategoryID      int64     `json:"categoryId"`
	OwnerID         int64     `json:"ownerId"`
	LikeCount       int64     `json:"likeCount"`
	RecentLikeCount int64     `json:"recentLikeCount,omitempty"`
	HasImage        bool      `json:"hasImage"`
	CreatedAt       time.Time `json:"createdAt"`
}

type OwnerInfo struct {
	ID              int64  `json:"id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// ArtDetail is the summary plus everything that depends on the viewer.
type ArtDetail struct {
	ArtSummary
	Description   string    `json:"description"`
	CategoryName  string    `json:"categoryName"`
	Liked         bool      `json:"liked"`
	IsOwner       bool      `json:"isOwner"`
	IsMasterpiece bool      `json:"isMasterpiece"`
	Owner         OwnerInfo `json:"owner"`
}

// ArtState answers like and unlike.
type ArtState struct {
	ArtID     int64 `json:"id"`
	LikeCount int64 `json:"likeCount"`
	Liked     bool  `json:"liked"`
}

// FilePayload is a decoded upload.
type FilePayload struct {
	Name string
	Data []byte
}

type Download struct {
	Data        []byte
	FileName    string
	ContentType string
	ETag        string
}
