package ui

import (
	"net/http"

	"qastats/adapters/excel"
	"qastats/app"
	"qastats/domain/core"
	"qastats/internal/errors"
	"qastats/internal/workbook"
	"qastats/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

type indexView struct {
	Title       string
	Error       string
	Workbooks   []*workbook.Workbook
	MaxUploadMB int
	TTL         string
}

type workbookView struct {
	Title             string
	Workbook          *workbook.Workbook
	Sheets            []string
	Sheet             string
	Headers           []string
	FilterColumn      string
	Groups            []string
	ConfidenceLevels  []float64
	DefaultConfidence float64
}

type resultView struct {
	Report      *app.Report
	Significant bool
}

// compareForm binds both HTMX form posts and JSON bodies
type compareForm struct {
	Sheet           string  `form:"sheet" json:"sheet"`
	FilterColumn    string  `form:"filter_column" json:"filter_column"`
	GroupA          string  `form:"group_a" json:"group_a"`
	GroupB          string  `form:"group_b" json:"group_b"`
	Target          string  `form:"target" json:"target"`
	Test            string  `form:"test" json:"test"`
	ConfidenceLevel float64 `form:"confidence_level" json:"confidence_level"`
}

func (f compareForm) request() app.ComparisonRequest {
	return app.ComparisonRequest{
		Sheet:           f.Sheet,
		FilterColumn:    f.FilterColumn,
		GroupA:          f.GroupA,
		GroupB:          f.GroupB,
		Target:          f.Target,
		Test:            app.ComparisonTest(f.Test),
		ConfidenceLevel: f.ConfidenceLevel,
	}
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func (s *Server) indexView(errMsg string) indexView {
	return indexView{
		Error:       errMsg,
		Workbooks:   s.store.List(),
		MaxUploadMB: s.config.Data.MaxUploadMB,
		TTL:         s.config.Data.WorkbookTTL.String(),
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", s.indexView(""))
}

func (s *Server) handleUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		s.logger.Warn("[UI] Upload without file: %v", err)
		s.renderTemplate(c, http.StatusBadRequest, "index.html", s.indexView("Choose an Excel or CSV file to load."))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.renderTemplate(c, http.StatusBadRequest, "index.html", s.indexView("Could not read the uploaded file."))
		return
	}
	defer f.Close()

	wb, err := s.store.Put(fh.Filename, f)
	if err != nil {
		s.renderTemplate(c, errors.HTTPStatus(err), "index.html", s.indexView(err.Error()))
		return
	}

	// Parse once so a broken file fails here rather than on the first comparison
	src, err := s.store.Source(wb.ID)
	if err == nil {
		_, err = src.Sheets()
	}
	if err != nil {
		_ = s.store.Delete(wb.ID)
		s.renderTemplate(c, http.StatusUnprocessableEntity, "index.html", s.indexView("Failed to load file: "+err.Error()))
		return
	}

	c.Redirect(http.StatusSeeOther, "/workbooks/"+wb.ID.String())
}

// loadSheet resolves the workbook in the path and reads the requested sheet,
// defaulting to the first one
func (s *Server) loadSheet(c *gin.Context, sheet string) (*workbook.Workbook, []string, *excel.ExcelData, error) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		return nil, nil, nil, core.NewNotFoundError(core.ErrWorkbookNotFound, c.Param("id"))
	}
	wb, err := s.store.Get(id)
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := s.store.Source(id)
	if err != nil {
		return nil, nil, nil, err
	}

	sheets, err := src.Sheets()
	if err != nil {
		return nil, nil, nil, err
	}
	if sheet == "" && len(sheets) > 0 {
		sheet = sheets[0]
	}
	data, err := src.ReadSheet(sheet)
	if err != nil {
		return nil, nil, nil, err
	}
	return wb, sheets, data, nil
}

func (s *Server) handleWorkbook(c *gin.Context) {
	wb, sheets, data, err := s.loadSheet(c, c.Query("sheet"))
	if err != nil {
		err = errors.FromDomain(err)
		s.renderTemplate(c, errors.HTTPStatus(err), "index.html", s.indexView(err.Error()))
		return
	}

	filter := c.Query("filter")
	if !data.HasColumn(filter) && len(data.Headers) > 0 {
		filter = data.Headers[0]
	}
	groups, _ := data.DistinctValues(filter)

	s.renderTemplate(c, http.StatusOK, "workbook.html", workbookView{
		Title:             wb.Name,
		Workbook:          wb,
		Sheets:            sheets,
		Sheet:             data.Sheet,
		Headers:           data.Headers,
		FilterColumn:      filter,
		Groups:            groups,
		ConfidenceLevels:  app.ConfidenceLevels,
		DefaultConfidence: s.config.Analysis.DefaultConfidence,
	})
}

// handleGroups lists the distinct values of a filter column
func (s *Server) handleGroups(c *gin.Context) {
	_, _, data, err := s.loadSheet(c, c.Query("sheet"))
	if err == nil {
		var groups []string
		if groups, err = data.DistinctValues(c.Query("filter")); err == nil {
			if isHTMX(c) {
				s.renderTemplate(c, http.StatusOK, fragments.Groups, groups)
				return
			}
			c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
			return
		}
	}
	s.respondError(c, errors.FromDomain(err))
}

func (s *Server) handleCompare(c *gin.Context) {
	var form compareForm
	if err := c.ShouldBind(&form); err != nil {
		s.respondError(c, errors.InvalidInput("invalid comparison form: "+err.Error()))
		return
	}

	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.FromDomain(core.NewNotFoundError(core.ErrWorkbookNotFound, c.Param("id"))))
		return
	}
	src, err := s.store.Source(id)
	if err != nil {
		s.respondError(c, errors.FromDomain(err))
		return
	}

	report, err := s.comparisons.Compare(c.Request.Context(), src, form.request())
	if err != nil {
		s.respondError(c, err)
		return
	}

	if isHTMX(c) {
		significant := report.Result != nil && report.Result.Significant
		s.renderTemplate(c, http.StatusOK, fragments.Result, resultView{Report: report, Significant: significant})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "text": report.Text()})
}

// respondError renders an error fragment for HTMX (so it lands in the output
// pane) and a JSON body otherwise
func (s *Server) respondError(c *gin.Context, err error) {
	if isHTMX(c) {
		s.renderTemplate(c, http.StatusOK, fragments.Error, err.Error())
		return
	}
	c.JSON(errors.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"workbooks": s.store.Len(),
	})
}
