package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/RaghavGalappanavar/Deployment/model"
	"github.com/RaghavGalappanavar/Deployment/pkg/logger"
	"github.com/RaghavGalappanavar/Deployment/service"
	"github.com/gin-gonic/gin"
)

// ContractService is the boundary the HTTP layer talks to.
type ContractService interface {
	GenerateContract(ctx context.Context, req *model.ContractRequest) (*model.ContractResponse, error)
	GetContractByID(ctx context.Context, contractID string) (*model.ContractDetailsResponse, error)
	GetContractPDFLocation(ctx context.Context, contractID string) (string, error)
}

// ArtifactOpener opens a stored PDF by the location the service returned.
type ArtifactOpener interface {
	Open(ctx context.Context, locator string) (*service.Artifact, error)
}

// Headers set on PDF downloads so browser clients can read the attachment.
const (
	pdfAllowMethods  = "GET, POST, PUT, DELETE, OPTIONS"
	pdfAllowHeaders  = "Content-Type, Authorization, X-Trace-Id"
	pdfExposeHeaders = "Content-Disposition, Content-Type, Content-Length"
)

var filenameEscaper = strings.NewReplacer(`"`, "", `\`, "", "\r", "", "\n", "")

type ContractHandler struct {
	service   ContractService
	artifacts ArtifactOpener
}

func NewContractHandler(svc ContractService, artifacts ArtifactOpener) *ContractHandler {
	useJSONFieldNames()
	return &ContractHandler{
		service:   svc,
		artifacts: artifacts,
	}
}

// Create handles POST /v1/contracts
func (h *ContractHandler) Create(c *gin.Context) {
	var req model.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	resp, err := h.service.GenerateContract(ctx, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logger.Info(ctx, "contract created",
		"contract_id", resp.ContractID,
		"purchase_request_id", resp.PurchaseRequestID,
	)

	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+url.PathEscape(resp.ContractID))
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /v1/contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	details, err := h.service.GetContractByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Warn(ctx, "contract not found", "contract_id", id)
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// DownloadPDF handles GET /v1/contracts/:id/pdf. A missing contract and a
// missing PDF both answer 404 with the same body; only the log tells them apart.
func (h *ContractHandler) DownloadPDF(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	location, err := h.service.GetContractPDFLocation(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Warn(ctx, "contract not found", "contract_id", id)
		}
		respondServiceError(c, err)
		return
	}

	artifact, err := h.artifacts.Open(ctx, location)
	if err != nil {
		if errors.Is(err, service.ErrArtifactNotFound) {
			logger.Warn(ctx, "PDF file not found at location", "contract_id", id, "location", location)
		}
		respondServiceError(c, err)
		return
	}
	defer artifact.Reader.Close()

	headers := map[string]string{
		"Content-Disposition":           fmt.Sprintf(`attachment; filename="%s.pdf"`, filenameEscaper.Replace(id)),
		"Access-Control-Allow-Methods":  pdfAllowMethods,
		"Access-Control-Allow-Headers":  pdfAllowHeaders,
		"Access-Control-Expose-Headers": pdfExposeHeaders,
	}
	if c.Writer.Header().Get("Access-Control-Allow-Origin") == "" {
		headers["Access-Control-Allow-Origin"] = "*"
	}

	logger.Debug(ctx, "streaming contract pdf", "contract_id", id, "size", artifact.Size)
	c.DataFromReader(http.StatusOK, artifact.Size, "application/pdf", artifact.Reader, headers)
}
