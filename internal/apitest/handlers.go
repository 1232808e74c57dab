package apitest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"path"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const maxUploadMemory = 8 << 20

func (s *Server) routes(mux *http.ServeMux) {
	p := func(pattern string) string {
		method, route, _ := strings.Cut(pattern, " ")
		return method + " " + BasePath + route
	}

	mux.HandleFunc(p("GET /health"), s.health)

	mux.HandleFunc(p("POST /auth/login"), s.login)
	mux.HandleFunc(p("POST /auth/refresh"), s.refresh)
	mux.HandleFunc(p("POST /auth/logout"), s.logout)

	mux.HandleFunc(p("GET /products"), s.admin(s.listProducts))
	mux.HandleFunc(p("GET /products/{id}"), s.admin(s.getProduct))
	mux.HandleFunc(p("POST /products"), s.admin(s.createProduct))
	mux.HandleFunc(p("PUT /products/{id}"), s.admin(s.updateProduct))
	mux.HandleFunc(p("DELETE /products/{id}"), s.admin(s.deleteProduct))

	mux.HandleFunc(p("GET /custom-products"), s.admin(s.listCustomProducts))
	mux.HandleFunc(p("GET /custom-products/{id}"), s.admin(s.getCustomProduct))
	mux.HandleFunc(p("POST /custom-products"), s.admin(s.createCustomProduct))
	mux.HandleFunc(p("PUT /custom-products/{id}"), s.admin(s.updateCustomProduct))
	mux.HandleFunc(p("DELETE /custom-products/{id}"), s.admin(s.deleteCustomProduct))

	mux.HandleFunc(p("GET /inquiries"), s.admin(s.listInquiries))
	mux.HandleFunc(p("GET /inquiries/{id}"), s.admin(s.getInquiry))
	mux.HandleFunc(p("POST /inquiries"), s.createInquiry) // public contact form
	mux.HandleFunc(p("PUT /inquiries/{id}"), s.admin(s.updateInquiry))
	mux.HandleFunc(p("DELETE /inquiries/{id}"), s.admin(s.deleteInquiry))

	mux.HandleFunc(p("GET /contacts"), s.admin(s.listContacts))
	mux.HandleFunc(p("GET /contacts/stats"), s.admin(s.contactStats))
	mux.HandleFunc(p("GET /contacts/{id}"), s.admin(s.getContact))
	mux.HandleFunc(p("PUT /contacts/{id}"), s.admin(s.updateContact))
	mux.HandleFunc(p("DELETE /contacts/{id}"), s.admin(s.deleteContact))
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- auth

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	s.loginCalls.Add(1)

	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" || (req.Email == "" && req.Username == "") {
		writeError(w, http.StatusBadRequest, "Email or username and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	admin := s.findAdminLocked(req.Email, req.Username)
	if admin == nil || bcrypt.CompareHashAndPassword(admin.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	access, refresh := s.issueLocked(admin.ID)
	setSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  access,
		"refreshToken": refresh,
		"admin":        admin,
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	s.mu.Lock()
	delay, fail := s.refreshDelay, s.failRefresh
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	adminID, ok := s.refreshTokens[req.RefreshToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.refreshTokens, req.RefreshToken)
	access, refresh := s.issueLocked(adminID)
	setSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access, "refreshToken": refresh})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.logoutCalls.Add(1)

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	delete(s.refreshTokens, req.RefreshToken)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// --- products

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		if search == "" || strings.Contains(strings.ToLower(p.Title), search) || strings.Contains(strings.ToLower(p.SKU), search) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProductLocked(r.PathValue("id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form data")
		return
	}
	p := &Product{}
	if msg := applyProductForm(p, r); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	p.Images = append(p.Images, uploadedImages(r)...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Slug != "" && s.findProductLocked(p.Slug) != nil {
		writeError(w, http.StatusConflict, "Product with this slug already exists")
		return
	}
	now := time.Now().UTC()
	p.ID = s.nextIDLocked("prod")
	p.CreatedAt, p.UpdatedAt = now, now
	s.products = append(s.products, p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form data")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.findProductLocked(r.PathValue("id"))
	if existing == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	updated := *existing
	updated.Specifications, updated.Links = nil, nil
	if msg := applyProductForm(&updated, r); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	var keep []string
	if raw := r.FormValue("existingImages"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &keep); err != nil {
			writeError(w, http.StatusBadRequest, "existingImages must be a JSON array")
			return
		}
	}
	updated.Images = append(keep, uploadedImages(r)...)
	updated.UpdatedAt = time.Now().UTC()
	*existing = updated
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProductLocked(r.PathValue("id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	s.products = slices.DeleteFunc(s.products, func(x *Product) bool { return x == p })
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func applyProductForm(p *Product, r *http.Request) string {
	p.Title = r.FormValue("title")
	if p.Title == "" {
		return "Title is required"
	}
	p.SKU = r.FormValue("sku")
	p.Slug = r.FormValue("slug")
	p.Description = r.FormValue("description")

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		return "Price must be a non-negative number"
	}
	p.Price = price
	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil || stock < 0 {
		return "Stock must be a non-negative integer"
	}
	p.Stock = stock
	p.StockStatus = stockStatus(stock)
	p.Featured = r.FormValue("featured") == "true"

	if raw := r.FormValue("specifications"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Specifications); err != nil {
			return "specifications must be a JSON array"
		}
	}
	if raw := r.FormValue("links"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Links); err != nil {
			return "links must be a JSON object"
		}
	}
	return ""
}

func uploadedImages(r *http.Request) []string {
	if r.MultipartForm == nil {
		return nil
	}
	var out []string
	for _, fh := range r.MultipartForm.File["images"] {
		out = append(out, "/uploads/"+path.Base(fh.Filename))
	}
	return out
}

func (s *Server) nextIDLocked(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, 1000+s.seq)
}

func (s *Server) findProductLocked(idOrSlug string) *Product {
	for _, p := range s.products {
		if p.ID == idOrSlug || (p.Slug != "" && p.Slug == idOrSlug) {
			return p
		}
	}
	return nil
}

// --- custom products

func (s *Server) listCustomProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.customs)
}

func (s *Server) getCustomProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findCustomLocked(r.PathValue("id"))
	if c == nil {
		writeError(w, http.StatusNotFound, "Custom product not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) createCustomProduct(w http.ResponseWriter, r *http.Request) {
	var c CustomProduct
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextIDLocked("custom")
	c.InquiryCount = 0
	s.customs = append(s.customs, &c)
	writeJSON(w, http.StatusCreated, &c)
}

func (s *Server) updateCustomProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findCustomLocked(r.PathValue("id"))
	if c == nil {
		writeError(w, http.StatusNotFound, "Custom product not found")
		return
	}
	updated := *c
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	updated.ID, updated.InquiryCount = c.ID, c.InquiryCount
	*c = updated
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCustomProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findCustomLocked(r.PathValue("id"))
	if c == nil {
		writeError(w, http.StatusNotFound, "Custom product not found")
		return
	}
	s.customs = slices.DeleteFunc(s.customs, func(x *CustomProduct) bool { return x == c })
	writeJSON(w, http.StatusOK, map[string]string{"message": "Custom product deleted"})
}

func (s *Server) findCustomLocked(id string) *CustomProduct {
	for _, c := range s.customs {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// --- inquiries

var inquiryStatuses = []string{"pending", "reviewing", "quoted", "completed", "rejected"}

func (s *Server) listInquiries(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.inquiries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getInquiry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inq := s.findInquiryLocked(r.PathValue("id"))
	if inq == nil {
		writeError(w, http.StatusNotFound, "Inquiry not found")
		return
	}
	writeJSON(w, http.StatusOK, inq)
}

func (s *Server) createInquiry(w http.ResponseWriter, r *http.Request) {
	var inq Inquiry
	if err := json.NewDecoder(r.Body).Decode(&inq); err != nil || inq.Name == "" || inq.Email == "" {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	inq.ID = s.nextIDLocked("inq")
	inq.Status = "pending"
	inq.CreatedAt, inq.UpdatedAt = now, now
	s.inquiries = append(s.inquiries, &inq)
	if c := s.findCustomLocked(inq.ProductID); c != nil {
		c.InquiryCount++
	}
	writeJSON(w, http.StatusCreated, &inq)
}

func (s *Server) updateInquiry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != nil && !slices.Contains(inquiryStatuses, *req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inq := s.findInquiryLocked(r.PathValue("id"))
	if inq == nil {
		writeError(w, http.StatusNotFound, "Inquiry not found")
		return
	}
	if req.Status != nil {
		inq.Status = *req.Status
	}
	if req.Notes != nil {
		inq.Notes = *req.Notes
	}
	inq.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, inq)
}

func (s *Server) deleteInquiry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inq := s.findInquiryLocked(r.PathValue("id"))
	if inq == nil {
		writeError(w, http.StatusNotFound, "Inquiry not found")
		return
	}
	s.inquiries = slices.DeleteFunc(s.inquiries, func(x *Inquiry) bool { return x == inq })
	writeJSON(w, http.StatusOK, map[string]string{"message": "Inquiry deleted"})
}

func (s *Server) findInquiryLocked(id string) *Inquiry {
	for _, inq := range s.inquiries {
		if inq.ID == id {
			return inq
		}
	}
	return nil
}

// --- contacts

var contactStatuses = []string{"New", "In Progress", "Resolved", "Closed"}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	search := strings.ToLower(q.Get("search"))
	page := positiveInt(q.Get("page"), 1)
	limit := positiveInt(q.Get("limit"), 10)

	s.mu.Lock()
	matched := make([]*Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if status != "" && c.Status != status {
			continue
		}
		if search != "" && !containsAny(search, c.FirstName, c.LastName, c.Email, c.Message) {
			continue
		}
		matched = append(matched, c)
	}
	s.mu.Unlock()

	sortContacts(matched, q.Get("sortBy"), q.Get("order"))

	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    matched[start:end],
		"pagination": map[string]int{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func (s *Server) contactStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := map[string]int{"total": len(s.contacts), "new": 0, "inProgress": 0, "resolved": 0}
	for _, c := range s.contacts {
		switch c.Status {
		case "New":
			stats["new"]++
		case "In Progress":
			stats["inProgress"]++
		case "Resolved":
			stats["resolved"]++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": stats})
}

func (s *Server) getContact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findContactLocked(r.PathValue("id"))
	if c == nil {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": c})
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != nil && !slices.Contains(contactStatuses, *req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findContactLocked(r.PathValue("id"))
	if c == nil {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	c.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Contact updated successfully", "data": c})
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findContactLocked(r.PathValue("id"))
	if c == nil {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}
	s.contacts = slices.DeleteFunc(s.contacts, func(x *Contact) bool { return x == c })
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Contact deleted successfully"})
}

func (s *Server) findContactLocked(id string) *Contact {
	for _, c := range s.contacts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func sortContacts(cs []*Contact, sortBy, order string) {
	desc := order != "asc"
	less := func(i, j int) bool { return cs[i].CreatedAt.Before(cs[j].CreatedAt) }
	switch sortBy {
	case "firstName":
		less = func(i, j int) bool { return cs[i].FirstName < cs[j].FirstName }
	case "status":
		less = func(i, j int) bool { return cs[i].Status < cs[j].Status }
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func containsAny(needle string, haystack ...string) bool {
	for _, h := range haystack {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
