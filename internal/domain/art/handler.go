package art

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"atelier/internal/domain/auth"
	"atelier/internal/pkg/apperr"
	"atelier/internal/pkg/response"
)

const (
	fileField    = "artFile"
	requestField = "artRequest"
)

var errInvalidBody = apperr.Validation("invalid request body")

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadArt accepts multipart/form-data with an optional artFile part and
// an artRequest JSON part, or a plain JSON body for a text-only artwork.
func (h *Handler) UploadArt(c *gin.Context) {
	req, file, err := h.readUpload(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	id, err := h.service.UploadArt(c.Request.Context(), file, *req, auth.IdentityFrom(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, UploadResponse{ArtID: id})
}

func (h *Handler) ListAll(c *gin.Context) {
	arts, err := h.service.ListAll(c.Request.Context())
	h.writeList(c, arts, err)
}

func (h *Handler) ListNew(c *gin.Context) {
	arts, err := h.service.ListNew(c.Request.Context())
	h.writeList(c, arts, err)
}

func (h *Handler) ListPopular(c *gin.Context) {
	arts, err := h.service.ListPopular(c.Request.Context())
	h.writeList(c, arts, err)
}

func (h *Handler) ListTrending(c *gin.Context) {
	arts, err := h.service.ListTrending(c.Request.Context())
	h.writeList(c, arts, err)
}

func (h *Handler) ListByCategory(c *gin.Context) {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	arts, err := h.service.ListByCategory(c.Request.Context(), categoryID)
	h.writeList(c, arts, err)
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cats)
}

func (h *Handler) ListByOwner(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	arts, err := h.service.ListByOwner(c.Request.Context(), userID)
	h.writeList(c, arts, err)
}

func (h *Handler) ListLikedBy(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	arts, err := h.service.ListLikedBy(c.Request.Context(), userID)
	h.writeList(c, arts, err)
}

func (h *Handler) GetMasterpieces(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	arts, err := h.service.GetMasterpieces(c.Request.Context(), userID)
	h.writeList(c, arts, err)
}

func (h *Handler) SetMasterpieces(c *gin.Context) {
	var req []MasterpieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	ids := make([]int64, 0, len(req))
	for _, item := range req {
		ids = append(ids, item.ArtSeq)
	}

	identity := auth.IdentityFrom(c)
	if err := h.service.SetMasterpieces(c.Request.Context(), identity.UserID, ids); err != nil {
		response.Fail(c, err)
		return
	}

	arts, err := h.service.GetMasterpieces(c.Request.Context(), identity.UserID)
	h.writeList(c, arts, err)
}

func (h *Handler) GetArtDetail(c *gin.Context) {
	artID, err := pathID(c, "artId")
	if err != nil {
		response.Fail(c, err)
		return
	}

	detail, err := h.service.GetArtDetail(c.Request.Context(), artID, auth.IdentityFrom(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

func (h *Handler) AddLike(c *gin.Context) {
	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	state, err := h.service.AddLike(c.Request.Context(), auth.IdentityFrom(c).UserID, req.ArtSeq)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

func (h *Handler) RemoveLike(c *gin.Context) {
	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	state, err := h.service.RemoveLike(c.Request.Context(), auth.IdentityFrom(c).UserID, req.ArtSeq)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

func (h *Handler) DownloadArt(c *gin.Context) {
	artID, err := pathID(c, "artId")
	if err != nil {
		response.Fail(c, err)
		return
	}

	dl, err := h.service.DownloadArt(c.Request.Context(), artID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	c.Header("ETag", dl.ETag)
	if match := c.GetHeader("If-None-Match"); match != "" && match == dl.ETag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
	c.Data(http.StatusOK, dl.ContentType, dl.Data)
}

func (h *Handler) UpdateArt(c *gin.Context) {
	var req UpdateArtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	a, err := h.service.UpdateArt(c.Request.Context(), req, auth.IdentityFrom(c).UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

// DeleteArt hands the raw credential to the service, which validates it.
func (h *Handler) DeleteArt(c *gin.Context) {
	token, err := auth.ExtractCredential(c.GetHeader(auth.AuthorizationHeader))
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, errInvalidBody)
		return
	}

	if err := h.service.DeleteArt(c.Request.Context(), req.Seq, token); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": req.Seq})
}

func (h *Handler) writeList(c *gin.Context, arts []ArtSummary, err error) {
	if err != nil {
		response.Fail(c, err)
		return
	}
	if arts == nil {
		arts = []ArtSummary{}
	}
	response.Success(c, http.StatusOK, arts)
}

func (h *Handler) readUpload(c *gin.Context) (*UploadArtRequest, *FilePayload, error) {
	var req UploadArtRequest

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, errInvalidBody
		}
		return &req, nil, nil
	}

	raw, err := h.requestPart(c)
	if err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, nil, apperr.Validation("artRequest is not valid JSON")
	}

	header, err := c.FormFile(fileField)
	if err == http.ErrMissingFile {
		return &req, nil, nil
	}
	if err != nil {
		return nil, nil, errInvalidBody
	}

	data, err := h.readPart(header)
	if err != nil {
		return nil, nil, err
	}
	return &req, &FilePayload{Name: header.Filename, Data: data}, nil
}

// requestPart reads artRequest as a form value or as a JSON file part.
func (h *Handler) requestPart(c *gin.Context) ([]byte, error) {
	if v := c.PostForm(requestField); v != "" {
		return []byte(v), nil
	}

	header, err := c.FormFile(requestField)
	if err != nil {
		return nil, apperr.Validation("artRequest part is required")
	}
	f, err := header.Open()
	if err != nil {
		return nil, errInvalidBody
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, 64<<10))
	if err != nil {
		return nil, errInvalidBody
	}
	return raw, nil
}

// readPart reads at most one byte past the size limit so the service can
// reject oversize files without holding them whole.
func (h *Handler) readPart(header *multipart.FileHeader) ([]byte, error) {
	limit := h.service.MaxUploadSize()
	if header.Size > limit {
		return nil, ErrFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, errInvalidBody
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errInvalidBody
	}
	return data, nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(name + " must be a positive integer")
	}
	return id, nil
}
