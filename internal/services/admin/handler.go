package admin

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/yardconsole/internal/services/admin/flash"
	"github.com/louisbranch/yardconsole/internal/services/admin/htmx"
	"github.com/louisbranch/yardconsole/internal/services/admin/i18n"
	"github.com/louisbranch/yardconsole/internal/services/admin/module/master"
	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	routepath "github.com/louisbranch/yardconsole/internal/services/admin/routepath"
	"github.com/louisbranch/yardconsole/internal/services/admin/templates"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
	"golang.org/x/text/message"
)

// Gateway is the upstream surface consumed by the console pages.
type Gateway interface {
	workflow.Store
	workflow.Deleter
	List(ctx context.Context, name string) ([]map[string]any, error)
	Detail(ctx context.Context, name string, id string) (map[string]any, error)
	Options(ctx context.Context, sourceKey string) ([]workflow.Option, error)
}

// HandlerConfig wires the console page handlers.
type HandlerConfig struct {
	Gateway  Gateway
	Registry *resource.Registry
	// SuccessGrace is how long a saved form shows its notice before
	// navigating back to the list.
	SuccessGrace time.Duration
	// DeleteKeepOpen keeps a failed delete dialog open for a retry.
	DeleteKeepOpen bool
	SecureCookies  bool
	Logger         *log.Logger
}

// Handler serves the console pages.
type Handler struct {
	gateway     Gateway
	registry    *resource.Registry
	grace       time.Duration
	keepOpen    bool
	flashPolicy flash.Policy
	logger      *log.Logger
}

var _ master.Service = (*Handler)(nil)

// NewHandler builds the console page handlers.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if cfg.Registry == nil {
		cfg.Registry = resource.Default()
	}
	if cfg.SuccessGrace <= 0 {
		cfg.SuccessGrace = workflow.DefaultGracePeriod
	}
	return &Handler{
		gateway:     cfg.Gateway,
		registry:    cfg.Registry,
		grace:       cfg.SuccessGrace,
		keepOpen:    cfg.DeleteKeepOpen,
		flashPolicy: flash.Policy{ForceSecure: cfg.SecureCookies},
		logger:      cfg.Logger,
	}, nil
}

// Routes returns the console page mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	master.RegisterRoutes(mux, h)
	return mux
}

func (h *Handler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// localizer resolves the locale path segment and remembers it in the
// language cookie.
func (h *Handler) localizer(w http.ResponseWriter, segment string) (*message.Printer, string, bool) {
	tag, ok := i18n.ParseLocale(segment)
	if !ok {
		return nil, "", false
	}
	lang := i18n.Segment(tag)
	i18n.SetLanguageCookie(w, lang)
	return i18n.Printer(tag), lang, true
}

// pageRequest is the resolved locale and resource of a master page request.
type pageRequest struct {
	loc  *message.Printer
	lang string
	def  resource.Definition
}

// resolve parses the locale and resource key. On failure it writes a 404.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, locale string, key string) (pageRequest, bool) {
	loc, lang, ok := h.localizer(w, locale)
	if !ok {
		h.notFound(w, r, nil, i18n.DefaultLocale)
		return pageRequest{}, false
	}
	def, ok := h.registry.ByKey(key)
	if !ok {
		h.notFound(w, r, loc, lang)
		return pageRequest{}, false
	}
	return pageRequest{loc: loc, lang: lang, def: def}, true
}

func (h *Handler) pageContext(w http.ResponseWriter, r *http.Request, lang string, loc *message.Printer, title string, activeKey string) templates.PageContext {
	page := templates.PageContext{
		Lang:     lang,
		Loc:      loc,
		Title:    title,
		UserName: userNameFromContext(r.Context()),
		HomeURL:  routepath.Home(lang),
	}
	if r.URL != nil {
		page.CurrentPath = r.URL.Path
		page.CurrentQuery = r.URL.RawQuery
	}
	for _, def := range h.registry.Pages() {
		page.Nav = append(page.Nav, templates.NavItem{
			Label:  templates.T(loc, def.TitleKey),
			URL:    routepath.Master(lang, def.Key),
			Active: def.Key == activeKey,
		})
	}
	label := func(key string) string { return templates.T(loc, key) }
	for _, option := range i18n.LanguageOptions(lang, label) {
		target := i18n.SwapLocale(page.CurrentPath, option.Locale)
		if page.CurrentQuery != "" {
			target += "?" + page.CurrentQuery
		}
		page.Languages = append(page.Languages, templates.LanguageOption{
			Label:  option.Label,
			URL:    target,
			Active: option.Active,
		})
	}
	if notice, ok := flash.ReadAndClearWithPolicy(w, r, h.flashPolicy); ok {
		page.Notices = append(page.Notices, templates.Notice{Level: string(notice.Kind), Message: notice.Message})
	}
	return page
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, status int, page templates.PageContext, body templ.Component) {
	htmx.RenderPageStatus(w, r, status, nil, templates.Layout(page, body), page.Title)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, loc *message.Printer, lang string) {
	if loc == nil {
		tag, _ := i18n.ParseLocale(lang)
		loc = i18n.Printer(tag)
	}
	title := templates.T(loc, "admin.error.title")
	page := h.pageContext(w, r, lang, loc, title, "")
	h.writePage(w, r, http.StatusNotFound, page, templates.MessagePage(title, templates.T(loc, "admin.error.not_found")))
}

// HandleRoot sends visitors to the home page of their preferred locale.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routepath.Home(i18n.Preferred(r)), http.StatusFound)
}

// HandleHome renders the console landing page.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request, locale string) {
	loc, lang, ok := h.localizer(w, locale)
	if !ok {
		h.notFound(w, r, nil, i18n.DefaultLocale)
		return
	}
	title := templates.T(loc, "admin.home.title")
	page := h.pageContext(w, r, lang, loc, title, "")
	h.writePage(w, r, http.StatusOK, page, templates.MessagePage(title, templates.T(loc, "admin.home.body")))
}

// noticeSink collects controller notices for the response being rendered.
type noticeSink struct {
	mu      sync.Mutex
	notices []templates.Notice
}

// Notify records n.
func (s *noticeSink) Notify(n workflow.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, templates.Notice{Level: string(n.Level), Message: n.Message})
}

func (s *noticeSink) list() []templates.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]templates.Notice(nil), s.notices...)
}

// flash carries the collected notices across a redirect. Only the last one
// fits in the cookie.
func (s *noticeSink) flash(w http.ResponseWriter, r *http.Request, policy flash.Policy) {
	notices := s.list()
	if len(notices) == 0 {
		return
	}
	last := notices[len(notices)-1]
	flash.WriteWithPolicy(w, r, flash.Notice{Kind: flash.Kind(last.Level), Message: last.Message}, policy)
}

// requireSameOrigin rejects state-changing requests from other origins.
func requireSameOrigin(w http.ResponseWriter, r *http.Request, loc *message.Printer) bool {
	forbidden := func() bool {
		http.Error(w, templates.T(loc, "admin.error.forbidden"), http.StatusForbidden)
		return false
	}
	if r == nil {
		return forbidden()
	}
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		if !sameOrigin(origin, r) {
			return forbidden()
		}
		return true
	}
	if referer := strings.TrimSpace(r.Referer()); referer != "" {
		if !sameOrigin(referer, r) {
			return forbidden()
		}
		return true
	}
	return forbidden()
}

func sameOrigin(rawURL string, r *http.Request) bool {
	if rawURL == "" || rawURL == "null" || r == nil {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	return strings.EqualFold(parsed.Scheme, requestScheme(r)) && strings.EqualFold(parsed.Host, r.Host)
}

func requestScheme(r *http.Request) string {
	if r == nil {
		return "http"
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		scheme, _, _ := strings.Cut(forwarded, ",")
		return strings.ToLower(strings.TrimSpace(scheme))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
