package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/conorfennell/habittracker/internal/backup"
	"github.com/conorfennell/habittracker/internal/domain"
	"github.com/conorfennell/habittracker/internal/storage"
	"github.com/go-playground/validator/v10"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server.
type Server struct {
	db        *storage.DB
	router    *http.ServeMux
	templates *template.Template
	validate  *validator.Validate
	backupDir string
	now       func() time.Time
}

// NewServer creates and configures a new server. Snapshots are disabled when
// backupDir is empty.
func NewServer(db *storage.DB, backupDir string) *Server {
	// Parse templates
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	s := &Server{
		db:        db,
		router:    http.NewServeMux(),
		templates: tpl,
		validate:  newValidator(),
		backupDir: backupDir,
		now:       time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create sub-filesystem for static assets: %v", err)
	}
	s.router.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("/", s.handleIndex())

	// Each button of the form posts the whole form to one of these.
	s.router.HandleFunc("/record/view", postOnly(s.handleView))
	s.router.HandleFunc("/record/save", postOnly(s.handleSave))
	s.router.HandleFunc("/record/delete", postOnly(s.handleDelete))
	s.router.HandleFunc("/streak", postOnly(s.handleStreak))
	s.router.HandleFunc("/best-habit", postOnly(s.handleBestHabit))
	s.router.HandleFunc("/backup", postOnly(s.handleBackup))
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// field is one labelled habit input.
type field struct {
	Name  string
	Label string
	Value string
}

// page is the data behind the tracker form and its result panel.
type page struct {
	Week    string
	Date    string
	Fields  []field
	Notice  string
	Warning string
	Result  string
	Confirm string
}

func newPage(values map[string]string) *page {
	p := &page{Week: values["week"], Date: values["date"]}
	for _, h := range domain.Habits {
		p.Fields = append(p.Fields, field{Name: h.Column(), Label: h.Label(), Value: values[h.Column()]})
	}
	return p
}

func (p *page) clearHabits() {
	for i := range p.Fields {
		p.Fields[i].Value = ""
	}
}

func (p *page) fillHabits(rec *domain.Record) {
	for i, h := range domain.Habits {
		p.Fields[i].Value = rec.Checks[h].String()
	}
}

func formatRecord(rec *domain.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week: %d, Date: %s", rec.Week, rec.Date)
	for _, h := range domain.Habits {
		fmt.Fprintf(&b, "\n%s: %s", h.Label(), rec.Checks[h])
	}
	return b.String()
}

// render writes the form fragment for HTMX requests and the full page otherwise.
func (s *Server) render(w http.ResponseWriter, r *http.Request, p *page) {
	name := "index"
	if r.Header.Get("HX-Request") == "true" {
		name = "tracker"
	}
	if err := s.templates.ExecuteTemplate(w, name, p); err != nil {
		slog.Error("Error rendering template", "template", name, "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// handleIndex renders an empty form.
func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.render(w, r, newPage(nil))
	}
}

// handleView shows the record for the typed week and date.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	p := newPage(values)
	if p.Warning = s.validateKey(values); p.Warning != "" {
		s.render(w, r, p)
		return
	}
	if err := s.showRecord(p); err != nil {
		s.serverError(w, "Error getting record", err)
		return
	}
	s.render(w, r, p)
}

func (s *Server) showRecord(p *page) error {
	rec, err := s.db.GetRecord(p.Week, p.Date)
	if err != nil {
		return err
	}
	if rec == nil {
		p.Result = "No record found for this week and date."
		p.clearHabits()
		return nil
	}
	p.Result = formatRecord(rec)
	p.fillHabits(rec)
	return nil
}

// handleSave validates the form and adds or updates the record.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	p := newPage(values)
	if p.Warning = s.validateKey(values); p.Warning != "" {
		s.render(w, r, p)
		return
	}
	week, checks, msg := s.validateRecord(values)
	if msg != "" {
		p.Warning = msg
		s.render(w, r, p)
		return
	}

	if _, err := s.db.UpsertRecord(week, p.Date, checks); err != nil {
		s.serverError(w, "Error saving record", err)
		return
	}
	p.Notice = "Record added/updated successfully."
	if err := s.showRecord(p); err != nil {
		s.serverError(w, "Error getting record after save", err)
		return
	}
	s.render(w, r, p)
}

// handleDelete asks for confirmation, then deletes the record once confirm=yes is posted.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	p := newPage(values)
	if p.Warning = s.validateKey(values); p.Warning != "" {
		s.render(w, r, p)
		return
	}

	switch r.PostFormValue("confirm") {
	case "yes":
	case "no":
		s.render(w, r, p)
		return
	default:
		p.Confirm = fmt.Sprintf("Are you sure you want to delete the record for week %s and date %s?", p.Week, p.Date)
		s.render(w, r, p)
		return
	}

	found := false
	if week, err := domain.ParseWeek(p.Week); err == nil {
		found, err = s.db.DeleteRecord(week, p.Date)
		if err != nil {
			s.serverError(w, "Error deleting record", err)
			return
		}
	}
	if found {
		p.Result = fmt.Sprintf("Record for week %s, date %s deleted.", p.Week, p.Date)
	} else {
		p.Result = fmt.Sprintf("No record found for week %s, date %s. Nothing was deleted.", p.Week, p.Date)
	}
	p.clearHabits()
	s.render(w, r, p)
}

// handleStreak shows the leading streak of fully checked-off days.
func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	p := newPage(formValues(r))
	streak, err := s.db.LeadingStreak()
	if err != nil {
		s.serverError(w, "Error computing streak", err)
		return
	}
	p.Result = fmt.Sprintf("Current streak (all habits checked-off consecutively): %d day(s)", streak)
	s.render(w, r, p)
}

// handleBestHabit shows the habit checked off on the most days.
func (s *Server) handleBestHabit(w http.ResponseWriter, r *http.Request) {
	p := newPage(formValues(r))
	habit, count, err := s.db.BestHabit()
	if err != nil {
		s.serverError(w, "Error computing best habit", err)
		return
	}
	p.Result = fmt.Sprintf("Best habit streak is '%s' with %d day(s) checked-off.", habit.Label(), count)
	s.render(w, r, p)
}

// handleBackup commits a snapshot of the table to the backup repository.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	p := newPage(formValues(r))
	if s.backupDir == "" {
		p.Warning = "Backups are not configured. Start the tracker with --backup-dir."
		s.render(w, r, p)
		return
	}
	res, err := backup.Snapshot(s.db, s.backupDir, s.now())
	if err != nil {
		s.serverError(w, "Error taking snapshot", err)
		return
	}
	if res.Committed {
		p.Result = fmt.Sprintf("Backed up %d record(s) as %s.", res.Records, res.Hash.String()[:7])
	} else {
		p.Result = fmt.Sprintf("Backup is already up to date with %d record(s).", res.Records)
	}
	s.render(w, r, p)
}
