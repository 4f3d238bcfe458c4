package art

// UploadArtRequest is the artRequest part of an upload. The owner always
// comes from the caller identity.
type UploadArtRequest struct {
	ArtName        string `json:"artName" validate:"required,max=100"`
	ArtDescription string `json:"artDescription" validate:"max=2000"`
	ArtCategorySeq int64  `json:"artCategorySeq" validate:"required,gt=0"`
}

// UpdateArtRequest changes only the fields that are present.
type UpdateArtRequest struct {
	ArtSeq         int64   `json:"artSeq" validate:"required,gt=0"`
	ArtName        *string `json:"artName,omitempty" validate:"omitempty,max=100"`
	ArtDescription *string `json:"artDescription,omitempty" validate:"omitempty,max=2000"`
	ArtCategorySeq *int64  `json:"artCategorySeq,omitempty" validate:"omitempty,gt=0"`
}

type LikeRequest struct {
	ArtSeq int64 `json:"artSeq" binding:"required,gt=0"`
}

type DeleteRequest struct {
	Seq int64 `json:"seq" binding:"required,gt=0"`
}

type MasterpieceRequest struct {
	ArtSeq int64 `json:"artSeq" binding:"required,gt=0"`
}

type UploadResponse struct {
	ArtID int64 `json:"id"`
}
