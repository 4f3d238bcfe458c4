package art

import "atelier/internal/pkg/apperr"

var (
	ErrArtNotFound     = apperr.NotFound("artwork")
	ErrImageNotFound   = apperr.NotFound("artwork image")
	ErrNotOwner        = apperr.Forbidden("only the owner can modify this artwork")
	ErrNotOwnedArt     = apperr.Forbidden("masterpieces must be your own artworks")
	ErrBlankName       = apperr.Validation("artName must not be blank")
	ErrUnknownCategory = apperr.Validation("artCategorySeq does not reference an existing category")
	ErrInvalidArtID    = apperr.Validation("artwork id must be a positive integer")
	ErrFileTooLarge    = apperr.Validation("file exceeds maximum allowed size")
	ErrNotAnImage      = apperr.Validation("only image files can be uploaded")
)
