// Package clienttest provides an in-memory restaurant API for tests.
package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bistro/pkg/runtime"
)

const apiPrefix = "/api"

// idKeys maps each collection to the JSON name of its primary key.
var idKeys = map[string]string{
	"countries": "id_country",
	"users":     "id_user",
	"seasons":   "id_season",
	"chiefs":    "id_chief",
	"dishtypes": "id_group",
	"dishes":    "id_dish",
	"ratings":   "id_rate",
	"products":  "id_prod",
	"orders":    "id_order",
}

// Request is one request seen by the server.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string
}

type account struct {
	password string
	token    string
	admin    bool
}

type failure struct {
	status  int
	message string
}

// Server is a fake API. Until an account exists every route is open. After
// that each route is guarded the way the real API guards it: see
// routeAccess.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tables   map[string][]map[string]any
	nextID   map[string]int
	recipes  []map[string]any
	accounts map[string]account
	tokens   map[string]bool
	delays   map[string]time.Duration
	failures map[string]failure
	requests []Request
	envelope bool
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		tables:   make(map[string][]map[string]any),
		nextID:   make(map[string]int),
		accounts: make(map[string]account),
		tokens:   make(map[string]bool),
		delays:   make(map[string]time.Duration),
		failures: make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", s.login)
	mux.HandleFunc("POST /api/register", s.register)
	mux.HandleFunc("GET /api/reports/dish_ratings", s.dishRatings)
	mux.HandleFunc("GET /api/dishes/search", s.searchDishes)
	mux.HandleFunc("GET /api/dishes/{id}/{action}", s.dishAction)
	mux.HandleFunc("POST /api/dishes/{id}/change_chef", s.changeChef)
	mux.HandleFunc("GET /api/recipes", s.listRecipes)
	mux.HandleFunc("POST /api/recipes", s.createRecipe)
	mux.HandleFunc("GET /api/recipes/{dish}/{product}", s.getRecipe)
	mux.HandleFunc("PUT /api/recipes/{dish}/{product}", s.updateRecipe)
	mux.HandleFunc("DELETE /api/recipes/{dish}/{product}", s.deleteRecipe)
	mux.HandleFunc("GET /api/{collection}", s.list)
	mux.HandleFunc("POST /api/{collection}", s.create)
	mux.HandleFunc("GET /api/{collection}/{id}", s.get)
	mux.HandleFunc("PUT /api/{collection}/{id}", s.update)
	mux.HandleFunc("DELETE /api/{collection}/{id}", s.remove)

	s.Server = httptest.NewServer(s.middleware(mux))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to configure a transport with.
func (s *Server) BaseURL() string {
	return s.URL + apiPrefix
}

// Transport returns a transport talking to the server with session.
func (s *Server) Transport(t testing.TB, session *runtime.Session) *runtime.Transport {
	t.Helper()
	transport, err := runtime.NewTransport(&runtime.Config{
		BaseURL: s.BaseURL(),
		Timeout: 5 * time.Second,
	}, session)
	require.NoError(t, err)
	return transport
}

// Seed stores records in a collection. Records without an ID get the next
// free one. "recipes" is accepted as well.
func (s *Server) Seed(collection string, records ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		item := toMap(record)
		if collection == "recipes" {
			s.recipes = append(s.recipes, item)
			continue
		}
		s.insert(collection, item)
	}
}

// Account registers credentials and returns the token login will hand out.
func (s *Server) Account(email, password string, admin bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccount(email, password, admin)
}

// Delay holds responses for path, such as "/countries", for d.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[path] = d
}

// Fail makes method+path answer with status and a JSON message.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// UseReportEnvelope wraps the ratings report in {success, data}.
func (s *Server) UseReportEnvelope() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = true
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Records returns a copy of a collection.
func (s *Server) Records(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if collection == "recipes" {
		return cloneAll(s.recipes)
	}
	return cloneAll(s.tables[collection])
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, apiPrefix)

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		delay := s.delays[path]
		fail, failing := s.failures[r.Method+" "+path]
		authStatus, authMsg := s.authorize(r, path)
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if authStatus != 0 {
			writeJSON(w, authStatus, map[string]any{"msg": authMsg})
			return
		}
		if failing {
			writeJSON(w, fail.status, map[string]any{"message": fail.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// access is the guard on a route.
type access int

const (
	public access = iota
	signedIn
	adminOnly
)

// routeAccess returns the guard the API puts on method and path. Catalogue
// reads are public; countries, search and reports need a token; listing
// users, orders and ratings and every other write need an admin.
func routeAccess(method, path string) access {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	switch method {
	case http.MethodGet:
		switch segs[0] {
		case "users", "orders", "ratings":
			return adminOnly
		case "countries", "reports":
			return signedIn
		case "dishes":
			if len(segs) == 2 && segs[1] == "search" {
				return signedIn
			}
		}
		return public
	case http.MethodPost:
		switch {
		case path == "/login", path == "/register":
			return public
		case path == "/dishes", path == "/ratings", path == "/orders":
			return signedIn
		case len(segs) == 3 && segs[0] == "dishes" && segs[2] == "change_chef":
			return signedIn
		}
	}
	return adminOnly
}

// authorize must be called with s.mu held.
func (s *Server) authorize(r *http.Request, path string) (int, string) {
	need := routeAccess(r.Method, path)
	if len(s.accounts) == 0 || need == public {
		return 0, ""
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	admin, ok := s.tokens[token]
	if !ok {
		return http.StatusUnauthorized, "Missing Authorization Header"
	}
	if need == adminOnly && !admin {
		return http.StatusForbidden, "Admin rights required"
	}
	return 0, ""
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[body.Email]
	s.mu.Unlock()

	if !ok || acc.password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "Bad email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access_token": acc.token, "is_admin": acc.admin})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name_user"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Email and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[body.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "User already exists"})
		return
	}
	s.addAccount(body.Email, body.Password, body.IsAdmin)
	s.insert("users", map[string]any{"name_user": body.Name, "email": body.Email, "is_admin": body.IsAdmin})
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "User registered"})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	if !knownCollection(w, collection) {
		return
	}

	s.mu.Lock()
	items := cloneAll(s.tables[collection])
	s.mu.Unlock()

	if collection == "dishes" {
		items = filterDishes(items, r.URL.Query(), "season", "country", "type")
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	if !knownCollection(w, collection) {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(collection, id); i >= 0 {
		writeJSON(w, http.StatusOK, s.tables[collection][i])
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	if !knownCollection(w, collection) {
		return
	}
	var item map[string]any
	if !decode(w, r, &item) {
		return
	}
	delete(item, idKeys[collection])

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusCreated, s.insert(collection, item))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	if !knownCollection(w, collection) {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var patch map[string]any
	if !decode(w, r, &patch) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
		return
	}
	record := s.tables[collection][i]
	for k, v := range patch {
		if k != idKeys[collection] {
			record[k] = v
		}
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	if !knownCollection(w, collection) {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
		return
	}
	s.tables[collection] = append(s.tables[collection][:i], s.tables[collection][i+1:]...)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Deleted"})
}

func (s *Server) searchDishes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := cloneAll(s.tables["dishes"])
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, filterDishes(items, r.URL.Query(), "season_id", "country_id", "group_id"))
}

// dishAction serves /dishes/seasonal/{season} and /dishes/{id}/cost.
func (s *Server) dishAction(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") == "seasonal" {
		s.seasonalDishes(w, r.PathValue("action"))
		return
	}
	if r.PathValue("action") != "cost" {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var cost float64
	for _, line := range s.recipes {
		if asInt(line["id_dish"]) != id {
			continue
		}
		if i := s.indexOf("products", asInt(line["id_product"])); i >= 0 {
			price, _ := s.tables["products"][i]["cost_product"].(float64)
			cost += price * float64(asInt(line["gramms"])) / 1000
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cost": cost})
}

func (s *Server) seasonalDishes(w http.ResponseWriter, season string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seasonID, err := strconv.Atoi(season)
	if err != nil {
		seasonID = -1
		for _, item := range s.tables["seasons"] {
			if item["name_season"] == season {
				seasonID = asInt(item["id_season"])
				break
			}
		}
	}

	dishes := []map[string]any{}
	for _, item := range s.tables["dishes"] {
		if asInt(item["id_season"]) == seasonID {
			dishes = append(dishes, clone(item))
		}
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (s *Server) changeChef(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		NewChefID int `json:"new_chef_id"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf("dishes", id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Dish not found"})
		return
	}
	if s.indexOf("chiefs", body.NewChefID) < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Chef not found"})
		return
	}
	dish := s.tables["dishes"][i]
	old := asInt(dish["id_chief"])
	dish["id_chief"] = body.NewChefID
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Chef changed successfully",
		"old_chef_id": old,
		"new_chef_id": body.NewChefID,
	})
}

func (s *Server) dishRatings(w http.ResponseWriter, r *http.Request) {
	minRating, err := strconv.ParseFloat(r.URL.Query().Get("min_rating"), 64)
	if err != nil {
		minRating = 3
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type summary struct {
		sum, count int
		comments   []string
	}
	byDish := map[int]*summary{}
	for _, rating := range s.tables["ratings"] {
		dishID := asInt(rating["id_dish"])
		sm, ok := byDish[dishID]
		if !ok {
			sm = &summary{}
			byDish[dishID] = sm
		}
		sm.sum += asInt(rating["rate"])
		sm.count++
		if c, _ := rating["comment"].(string); c != "" {
			sm.comments = append(sm.comments, c)
		}
	}

	rows := []map[string]any{}
	for dishID, sm := range byDish {
		avg := float64(sm.sum) / float64(sm.count)
		if avg < minRating {
			continue
		}
		name := ""
		if i := s.indexOf("dishes", dishID); i >= 0 {
			name, _ = s.tables["dishes"][i]["name_dish"].(string)
		}
		rows = append(rows, map[string]any{
			"dish_id":    dishID,
			"dish_name":  name,
			"avg_rating": avg,
			"comments":   strings.Join(sm.comments, "; "),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := rows[i]["avg_rating"].(float64), rows[j]["avg_rating"].(float64)
		if ai != aj {
			return ai > aj
		}
		return rows[i]["dish_id"].(int) < rows[j]["dish_id"].(int)
	})

	if s.envelope {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rows})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, cloneAll(s.recipes))
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var item map[string]any
	if !decode(w, r, &item) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recipeIndex(asInt(item["id_dish"]), asInt(item["id_product"])) >= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Recipe line already exists"})
		return
	}
	s.recipes = append(s.recipes, item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	s.withRecipe(w, r, func(i int) {
		writeJSON(w, http.StatusOK, s.recipes[i])
	})
}

func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if !decode(w, r, &patch) {
		return
	}
	s.withRecipe(w, r, func(i int) {
		if v, ok := patch["gramms"]; ok {
			s.recipes[i]["gramms"] = v
		}
		writeJSON(w, http.StatusOK, s.recipes[i])
	})
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	s.withRecipe(w, r, func(i int) {
		s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Deleted"})
	})
}

func (s *Server) withRecipe(w http.ResponseWriter, r *http.Request, fn func(i int)) {
	dishID, ok := pathInt(w, r, "dish")
	if !ok {
		return
	}
	productID, ok := pathInt(w, r, "product")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.recipeIndex(dishID, productID)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Recipe not found"})
		return
	}
	fn(i)
}

// The helpers below expect s.mu to be held.

func (s *Server) addAccount(email, password string, admin bool) string {
	token := fmt.Sprintf("token-%d-%s", len(s.accounts)+1, email)
	s.accounts[email] = account{password: password, token: token, admin: admin}
	s.tokens[token] = admin
	return token
}

func (s *Server) insert(collection string, item map[string]any) map[string]any {
	key := idKeys[collection]
	id := asInt(item[key])
	if id <= 0 {
		s.nextID[collection]++
		id = s.nextID[collection]
	} else if id > s.nextID[collection] {
		s.nextID[collection] = id
	}
	item[key] = id
	s.tables[collection] = append(s.tables[collection], item)
	return clone(item)
}

func (s *Server) indexOf(collection string, id int) int {
	key := idKeys[collection]
	for i, item := range s.tables[collection] {
		if asInt(item[key]) == id {
			return i
		}
	}
	return -1
}

func (s *Server) recipeIndex(dishID, productID int) int {
	for i, item := range s.recipes {
		if asInt(item["id_dish"]) == dishID && asInt(item["id_product"]) == productID {
			return i
		}
	}
	return -1
}

func filterDishes(items []map[string]any, query url.Values, seasonKey, countryKey, groupKey string) []map[string]any {
	filters := map[string]string{
		"id_season":  query.Get(seasonKey),
		"id_country": query.Get(countryKey),
		"id_group":   query.Get(groupKey),
	}
	out := []map[string]any{}
	for _, item := range items {
		keep := true
		for field, want := range filters {
			if want == "" {
				continue
			}
			if n, err := strconv.Atoi(want); err != nil || asInt(item[field]) != n {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

func knownCollection(w http.ResponseWriter, collection string) bool {
	if _, ok := idKeys[collection]; ok {
		return true
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Unknown resource"})
	return false
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
		return 0, false
	}
	return n, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toMap(record any) map[string]any {
	data, err := json.Marshal(record)
	if err != nil {
		panic(fmt.Sprintf("clienttest: cannot encode seed record: %v", err))
	}
	var item map[string]any
	if err := json.Unmarshal(data, &item); err != nil {
		panic(fmt.Sprintf("clienttest: seed record is not an object: %v", err))
	}
	return item
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}

func clone(item map[string]any) map[string]any {
	out := make(map[string]any, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func cloneAll(items []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, clone(item))
	}
	return out
}
