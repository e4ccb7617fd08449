package httpapi

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"sales-dashboard/models"
	"sales-dashboard/services"
	"sales-dashboard/sources/spreadsheet"
	"sales-dashboard/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type loadSummary struct {
	State    services.Stage      `json:"state"`
	Records  int                 `json:"records"`
	Stats    services.CleanStats `json:"stats"`
	LoadedAt *time.Time          `json:"loaded_at,omitempty"`
}

type recordsPage struct {
	Items    []models.Sale `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
}

type toggleRequest struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
	Included  *bool  `json:"included"`
}

type uploadResponse struct {
	Result      services.UploadResult `json:"result"`
	Progress    []services.Progress   `json:"progress"`
	Reload      *loadSummary          `json:"reload,omitempty"`
	ReloadError string                `json:"reload_error,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	data := map[string]any{
		"service": "sales-dashboard",
		"time":    time.Now().UTC(),
		"records": len(s.session.Sales()),
	}
	stage, _ := s.session.LastLoad()
	data["state"] = stage
	if loadedAt := s.session.LoadedAt(); !loadedAt.IsZero() {
		data["loaded_at"] = loadedAt
	}
	return success(c, data)
}

func (s *Server) handleReload(c echo.Context) error {
	summary, err := s.reload(c)
	if err != nil {
		s.logger.Error().Err(err).Msg("reload sales failed")
		return errorWithStatus(c, http.StatusServiceUnavailable, err.Error(), nil)
	}
	return success(c, summary)
}

// reload treats an empty store as a successful load with no records.
func (s *Server) reload(c echo.Context) (*loadSummary, error) {
	sales, err := s.session.Load(c.Request().Context())
	summary := &loadSummary{State: services.StageReady, Records: len(sales)}
	switch {
	case errors.Is(err, services.ErrNoData):
		summary.State = services.StageEmpty
	case err != nil:
		return nil, err
	}
	summary.Stats = s.session.Stats()
	loadedAt := s.session.LoadedAt()
	summary.LoadedAt = &loadedAt
	return summary, nil
}

// requireLoaded writes the response itself and reports false unless the last
// load succeeded with data. Failed loads hide the previous sales.
func (s *Server) requireLoaded(c echo.Context) (bool, error) {
	stage, err := s.session.LastLoad()
	data := map[string]any{"state": stage}
	switch stage {
	case services.StageReady:
		return true, nil
	case services.StageEmpty:
		return false, fail(c, http.StatusNotFound, "No sales data found", data)
	case services.StageFailed:
		return false, errorWithStatus(c, http.StatusServiceUnavailable, err.Error(), data)
	default:
		return false, errorWithStatus(c, http.StatusServiceUnavailable, "Sales have not been loaded yet", data)
	}
}

func (s *Server) handleDashboard(c echo.Context) error {
	if ok, err := s.requireLoaded(c); !ok {
		return err
	}
	return success(c, s.session.Dashboard())
}

func (s *Server) handleRecords(c echo.Context) error {
	page, err := parsePositiveInt(c.QueryParam("page"), 1)
	if err != nil {
		return failValidation(c, map[string]string{"page": "must be a positive integer"})
	}
	pageSize, err := parsePositiveInt(c.QueryParam("page_size"), defaultPageSize)
	if err != nil {
		return failValidation(c, map[string]string{"page_size": "must be a positive integer"})
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	if ok, err := s.requireLoaded(c); !ok {
		return err
	}

	sales := s.session.Filtered()
	start, end := len(sales), len(sales)
	if page-1 <= len(sales)/pageSize {
		start = (page - 1) * pageSize
		end = min(start+pageSize, len(sales))
	}

	return success(c, recordsPage{
		Items:    sales[start:end],
		Page:     page,
		PageSize: pageSize,
		Total:    len(sales),
	})
}

func (s *Server) handleFilters(c echo.Context) error {
	return success(c, s.session.Filters().Options())
}

func (s *Server) handleToggleFilter(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	fieldErrors := map[string]string{}
	dim, err := services.ParseDimension(req.Dimension)
	if err != nil {
		fieldErrors["dimension"] = err.Error()
	}
	if strings.TrimSpace(req.Value) == "" {
		fieldErrors["value"] = "is required"
	}
	if req.Included == nil {
		fieldErrors["included"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	if err := s.session.Toggle(dim, req.Value, *req.Included); err != nil {
		return failValidation(c, map[string]string{"value": err.Error()})
	}
	return success(c, s.session.Filters().Options())
}

func (s *Server) handleClearFilter(c echo.Context) error {
	dim, err := services.ParseDimension(c.Param("dimension"))
	if err != nil {
		return failValidation(c, map[string]string{"dimension": err.Error()})
	}
	if err := s.session.Clear(dim); err != nil {
		return failValidation(c, map[string]string{"dimension": err.Error()})
	}
	return success(c, s.session.Filters().Options())
}

func (s *Server) handleResetFilters(c echo.Context) error {
	s.session.ResetFilters()
	return success(c, s.session.Filters().Options())
}

func (s *Server) handleUpload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return failValidation(c, map[string]string{"file": "a spreadsheet file is required"})
	}
	f, err := header.Open()
	if err != nil {
		return internalError(c, "Failed to open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return internalError(c, "Failed to read upload")
	}

	rows, err := spreadsheet.Parse(header.Filename, data)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			return failValidation(c, map[string]string{"file": "must be an .xlsx or .csv spreadsheet"})
		}
		return fail(c, http.StatusBadRequest, "Could not read spreadsheet: "+err.Error(), nil)
	}
	if len(rows) == 0 {
		return failValidation(c, map[string]string{"file": "contains no data rows"})
	}

	resp := uploadResponse{Progress: []services.Progress{}}
	result, err := s.uploader.Upload(c.Request().Context(), rows, func(p services.Progress) {
		resp.Progress = append(resp.Progress, p)
	})
	resp.Result = result
	if err != nil {
		var chunkErr *services.ChunkError
		if errors.As(err, &chunkErr) {
			s.logger.Error().Err(err).Str("run_id", result.RunID).Msg("upload aborted")
			return errorWithStatus(c, http.StatusBadGateway, chunkErr.Error(), resp)
		}
		s.logger.Error().Err(err).Msg("upload failed")
		return internalError(c, "Upload failed")
	}

	summary, err := s.reload(c)
	if err != nil {
		resp.ReloadError = err.Error()
	} else {
		resp.Reload = summary
	}
	return success(c, resp)
}

func (s *Server) handleExport(c echo.Context) error {
	if ok, err := s.requireLoaded(c); !ok {
		return err
	}
	sales := s.session.Filtered()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales_export.csv"`)
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.Write(storage.CSVHeader()); err != nil {
		return err
	}
	for _, sale := range sales {
		if err := w.Write(storage.SaleRecord(sale)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func parsePositiveInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
