package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/starrysand/atelier-backend/internal/catalog"
	"github.com/starrysand/atelier-backend/internal/order"
	"github.com/starrysand/atelier-backend/internal/pricing"
	"github.com/starrysand/atelier-backend/internal/ticket"
)

var (
	loader   *catalog.Loader
	sessions = map[string]*order.Session{}
	lock     sync.Mutex
)

type sessionResp struct {
	Token string `json:"token"`
}

type notifResp struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type quoteResp struct {
	BaseTotal               float64    `json:"baseTotal"`
	CraftMultiplier         float64    `json:"craftMultiplier"`
	RawAddonsTotal          float64    `json:"rawAddonsTotal"`
	AddonDiscountMultiplier float64    `json:"addonDiscountMultiplier"`
	AddonTotal              float64    `json:"addonTotal"`
	SubTotal                float64    `json:"subTotal"`
	DiscountAmount          float64    `json:"discountAmount"`
	RushFeeAmount           float64    `json:"rushFeeAmount"`
	PackagingFee            float64    `json:"packagingFee"`
	ThresholdErrors         []string   `json:"thresholdErrors,omitempty"`
	TotalSavings            float64    `json:"totalSavings"`
	FinalPrice              int64      `json:"finalPrice"`
	HasComplexItems         bool       `json:"hasComplexItems"`
	AppliedCodes            []string   `json:"appliedCodes,omitempty"`
	Notification            *notifResp `json:"notification,omitempty"`
}

type switchResp struct {
	Switched     bool `json:"switched"`
	NeedsConfirm bool `json:"needsConfirm,omitempty"`
}

// newToken generates a session token; falls back to a timestamp so session
// creation never fails.
func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000")
	}
	return hex.EncodeToString(b)
}

// getSession resolves the token query param. Writes the error response
// itself and returns nil when the token is missing or unknown.
// Callers must hold lock.
func getSession(w http.ResponseWriter, r *http.Request) *order.Session {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing param token", http.StatusBadRequest)
		return nil
	}
	s, ok := sessions[token]
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return nil
	}
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeQuote responds with the freshly computed quote for the session's
// current selection. Every mutation endpoint ends here so the storefront
// never shows a stale price.
func writeQuote(w http.ResponseWriter, s *order.Session) {
	sel := s.Selection()
	q := pricing.Compute(sel)
	resp := quoteResp{
		BaseTotal:               q.BaseTotal.InexactFloat64(),
		CraftMultiplier:         q.CraftMultiplier,
		RawAddonsTotal:          q.RawAddonsTotal.InexactFloat64(),
		AddonDiscountMultiplier: q.AddonDiscountMultiplier.InexactFloat64(),
		AddonTotal:              q.AddonTotal.InexactFloat64(),
		SubTotal:                q.SubTotal.InexactFloat64(),
		DiscountAmount:          q.DiscountAmount.InexactFloat64(),
		RushFeeAmount:           q.RushFeeAmount.InexactFloat64(),
		PackagingFee:            q.PackagingFee.InexactFloat64(),
		ThresholdErrors:         q.ThresholdErrors,
		TotalSavings:            q.TotalSavings.InexactFloat64(),
		FinalPrice:              q.FinalPrice,
		HasComplexItems:         pricing.HasComplexItems(sel),
	}
	for _, d := range sel.Discounts {
		resp.AppliedCodes = append(resp.AppliedCodes, d.Code)
	}
	if n := s.Notification(); n != nil {
		resp.Notification = &notifResp{Kind: string(n.Kind), Message: n.Message}
	}
	writeJSON(w, resp)
}

func loadCatalog(w http.ResponseWriter) *catalog.Catalog {
	cat, err := loader.Load()
	if err != nil {
		http.Error(w, "catalog unavailable: "+err.Error(), http.StatusInternalServerError)
		return nil
	}
	return cat
}

func handleNewSession(w http.ResponseWriter, r *http.Request) {
	cat := loadCatalog(w)
	if cat == nil {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	token := newToken()
	sessions[token] = order.NewSession(cat.DiscountRules())
	writeJSON(w, sessionResp{Token: token})
}

func handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := loadCatalog(w)
	if cat == nil {
		return
	}
	writeJSON(w, cat)
}

func handleSelectSize(w http.ResponseWriter, r *http.Request) {
	cat := loadCatalog(w)
	if cat == nil {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	spec, ok := cat.FindSize(r.URL.Query().Get("name"))
	if !ok {
		http.Error(w, "unknown size", http.StatusNotFound)
		return
	}
	s.SelectSize(spec.Item())
	writeQuote(w, s)
}

func handleToggleAddon(w http.ResponseWriter, r *http.Request) {
	cat := loadCatalog(w)
	if cat == nil {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	q := r.URL.Query()
	spec, ok := cat.FindAddon(q.Get("category"), q.Get("name"))
	if !ok {
		http.Error(w, "unknown addon", http.StatusNotFound)
		return
	}
	s.ToggleAddon(spec.Item())
	writeQuote(w, s)
}

func handleRemoveAddon(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	q := r.URL.Query()
	s.RemoveAddon(order.AddonCategory(q.Get("category")), q.Get("name"))
	writeQuote(w, s)
}

func handleClearAddons(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	s.ClearAddons()
	writeQuote(w, s)
}

func handleSelectRush(w http.ResponseWriter, r *http.Request) {
	cat := loadCatalog(w)
	if cat == nil {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	spec, ok := cat.FindRush(r.URL.Query().Get("id"))
	if !ok {
		http.Error(w, "unknown rush tier", http.StatusNotFound)
		return
	}
	s.SelectRush(spec.Item())
	writeQuote(w, s)
}

func handleSelectPackaging(w http.ResponseWriter, r *http.Request) {
	cat := loadCatalog(w)
	if cat == nil {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	spec, ok := cat.FindPackaging(r.URL.Query().Get("title"))
	if !ok {
		http.Error(w, "unknown packaging", http.StatusNotFound)
		return
	}
	s.SelectPackaging(spec.Item())
	writeQuote(w, s)
}

// handleSelectFluid reads the fluid recipe from the request body. The shape
// varies per strategy, so it is walked with gjson instead of a fixed struct.
// An empty strategy clears the selection.
func handleSelectFluid(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}

	strategy := gjson.GetBytes(body, "strategy").String()
	if strategy == "" {
		s.SelectFluid(nil)
		writeQuote(w, s)
		return
	}

	f := &order.FluidSelection{
		Strategy: order.FluidStrategy(strategy),
		Title:    gjson.GetBytes(body, "title").String(),
	}
	switch f.Strategy {
	case order.FluidBuddha:
		f.Note = gjson.GetBytes(body, "note").String()
	case order.FluidSelf:
		gjson.GetBytes(body, "materials").ForEach(func(_, v gjson.Result) bool {
			f.Materials = append(f.Materials, v.String())
			return true
		})
		if len(f.Materials) > order.MaxSelfMaterials {
			http.Error(w, "too many materials", http.StatusBadRequest)
			return
		}
	case order.FluidSurprise:
		// nothing extra to read
	case order.FluidBlindbox:
		gjson.GetBytes(body, "styleTags").ForEach(func(_, v gjson.Result) bool {
			f.StyleTags = append(f.StyleTags, v.String())
			return true
		})
		f.StyleText = gjson.GetBytes(body, "styleText").String()
		f.Taboo = gjson.GetBytes(body, "taboo").String()
		if f.Taboo == "" {
			http.Error(w, "taboo is required for blindbox", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "unknown fluid strategy", http.StatusBadRequest)
		return
	}
	s.SelectFluid(f)
	writeQuote(w, s)
}

// handleSetMode switches the decoration path. The destructive custom→package
// switch needs confirm=1; without it the response tells the storefront to
// show the data-loss warning first.
func handleSetMode(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	q := r.URL.Query()
	mode := order.DecorationMode(q.Get("mode"))
	if mode != order.ModePackage && mode != order.ModeCustom {
		http.Error(w, "mode must be package or custom", http.StatusBadRequest)
		return
	}
	confirmed := q.Get("confirm") == "1"
	switched := s.SwitchDecorationMode(mode, func() bool { return confirmed })
	writeJSON(w, switchResp{Switched: switched, NeedsConfirm: !switched})
}

func handleSelectPackage(w http.ResponseWriter, r *http.Request) {
	cat := loadCatalog(w)
	if cat == nil {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		s.SelectDecorationPackage(nil)
		writeQuote(w, s)
		return
	}
	spec, ok := cat.FindPackage(id)
	if !ok {
		http.Error(w, "unknown package", http.StatusNotFound)
		return
	}
	item := spec.Item()
	s.SelectDecorationPackage(&item)
	writeQuote(w, s)
}

func handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	cat := loadCatalog(w)
	if cat == nil {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	preset, ok := cat.FindPreset(r.URL.Query().Get("id"))
	if !ok {
		http.Error(w, "unknown preset", http.StatusNotFound)
		return
	}
	// validated at load time, so these lookups only fail on a bad preset
	sizeSpec, ok := cat.FindSize(preset.SizeName)
	if !ok {
		http.Error(w, "preset references unknown size", http.StatusInternalServerError)
		return
	}
	mode := order.DecorationMode(preset.Mode)
	var pkg *order.DecorationPackage
	if mode == order.ModePackage && preset.PackageID != "" {
		spec, ok := cat.FindPackage(preset.PackageID)
		if !ok {
			http.Error(w, "preset references unknown package", http.StatusInternalServerError)
			return
		}
		item := spec.Item()
		pkg = &item
	}
	var addons []order.AddonItem
	for _, name := range preset.AddonNames {
		for _, a := range cat.Addons {
			if a.Name == name {
				addons = append(addons, a.Item())
				break
			}
		}
	}
	s.ApplyPreset(sizeSpec.Item(), mode, pkg, addons)
	writeQuote(w, s)
}

func handleAddDiscount(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		code = gjson.GetBytes(body, "code").String()
	}
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	s.AddDiscount(code)
	writeQuote(w, s)
}

func handleRemoveDiscount(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	s.RemoveDiscount(r.URL.Query().Get("code"))
	writeQuote(w, s)
}

func handleClearNotification(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	s.ClearNotification()
	writeQuote(w, s)
}

func handleConsult(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	s.SetConsultationMode(r.URL.Query().Get("on") == "1")
	writeQuote(w, s)
}

func handleClearOrder(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	s.ClearOrder()
	writeQuote(w, s)
}

func handleQuote(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	writeQuote(w, s)
}

func handleTicket(w http.ResponseWriter, r *http.Request) {
	lock.Lock()
	defer lock.Unlock()
	s := getSession(w, r)
	if s == nil {
		return
	}
	sel := s.Selection()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(ticket.Render(sel, pricing.Compute(sel))))
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configDir := flag.String("config", "config", "catalog config directory")
	watchEvery := flag.Duration("watch", 10*time.Second, "catalog reload poll interval (0 disables)")
	flag.Parse()

	loader = catalog.NewLoader(*configDir)
	if _, err := loader.Load(); err != nil {
		log.Fatalf("catalog: %v", err)
	}
	if *watchEvery > 0 {
		w := catalog.NewWatcher(loader, *watchEvery, func(path string) {
			log.Printf("catalog changed: %s, cache invalidated", path)
		})
		w.Start()
	}

	http.HandleFunc("/new_session", handleNewSession)
	http.HandleFunc("/catalog", handleCatalog)
	http.HandleFunc("/select_size", handleSelectSize)
	http.HandleFunc("/toggle_addon", handleToggleAddon)
	http.HandleFunc("/remove_addon", handleRemoveAddon)
	http.HandleFunc("/clear_addons", handleClearAddons)
	http.HandleFunc("/select_rush", handleSelectRush)
	http.HandleFunc("/select_packaging", handleSelectPackaging)
	http.HandleFunc("/select_fluid", handleSelectFluid)
	http.HandleFunc("/set_mode", handleSetMode)
	http.HandleFunc("/select_package", handleSelectPackage)
	http.HandleFunc("/apply_preset", handleApplyPreset)
	http.HandleFunc("/add_discount", handleAddDiscount)
	http.HandleFunc("/remove_discount", handleRemoveDiscount)
	http.HandleFunc("/clear_notification", handleClearNotification)
	http.HandleFunc("/consult", handleConsult)
	http.HandleFunc("/clear_order", handleClearOrder)
	http.HandleFunc("/quote", handleQuote)
	http.HandleFunc("/ticket", handleTicket)

	log.Printf("listening on %s ...", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
