//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jobpilot/apiserver/config"
	"github.com/jobpilot/apiserver/internal/db"
	"github.com/jobpilot/apiserver/internal/server"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/store"
)

const (
	serverPort = 18080

	superAdminEmail    = "root@example.com"
	superAdminPassword = "rootpass123!"
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForMongo(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mongo not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := bootstrapSuperAdmin(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to bootstrap superadmin: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestEmployerApprovalLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("employer_%d@example.com", suffix)
	password := "testpass123!"

	createEmployer(t, baseURL, email, password, suffix)

	// Unapproved employers cannot log in.
	status, body := postJSON(t, baseURL+"/employer/login", map[string]string{
		"email": email, "password": password,
	}, "")
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for pending employer, got %d: %s", status, body)
	}
	if !strings.Contains(body, "Pending") {
		t.Fatalf("expected pending status in body: %s", body)
	}

	adminToken := loginSuperAdmin(t, baseURL)
	employerID := findEmployerID(t, baseURL, email)

	status, body = putJSON(t, fmt.Sprintf("%s/employer/approve/%s", baseURL, employerID), map[string]string{
		"action": "Approved",
	}, adminToken)
	if status != http.StatusOK {
		t.Fatalf("approve employer status %d: %s", status, body)
	}

	employerToken := loginEmployer(t, baseURL, email, password)

	status, body = postJSON(t, baseURL+"/job/post-job", map[string]any{
		"jobTitle":           "Night Nurse",
		"companyName":        "Acme Care",
		"location":           "Pune",
		"employmentType":     "Full-time",
		"jobDescription":     "Overnight ward duty.",
		"skills":             []string{"nursing"},
		"experienceRequired": "2 years",
		"education":          "B.Sc Nursing",
		"numberOfOpenings":   2,
		"applyMode":          "Portal",
		"workMode":           "On-site",
	}, employerToken)
	if status != http.StatusCreated {
		t.Fatalf("post job status %d: %s", status, body)
	}

	resp, err := http.Get(baseURL + "/job/get-all-jobs")
	if err != nil {
		t.Fatalf("get all jobs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get all jobs status %d", resp.StatusCode)
	}
	listing, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(listing), "Night Nurse") {
		t.Fatalf("expected posted job in listing: %s", listing)
	}
}

func TestVendorLoginQuirks(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("vendor_%d@example.com", suffix)
	password := "vendorpass123!"

	status, body := postJSON(t, baseURL+"/vendor/create", map[string]string{
		"firstName": "Vera",
		"lastName":  "Vendor",
		"email":     email,
		"password":  password,
		"mobile":    fmt.Sprintf("9%09d", suffix%1000000000),
	}, "")
	if status != http.StatusCreated {
		t.Fatalf("create vendor status %d: %s", status, body)
	}

	// Wrong vendor password is a 400, not a 401.
	status, _ = postJSON(t, baseURL+"/vendor/login", map[string]string{
		"email": email, "password": "wrongpass1",
	}, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong vendor password, got %d", status)
	}

	status, body = postJSON(t, baseURL+"/vendor/login", map[string]string{
		"email": email, "password": password,
	}, "")
	if status != http.StatusOK {
		t.Fatalf("vendor login status %d: %s", status, body)
	}
	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil || parsed.Token == "" {
		t.Fatalf("missing vendor token: %s", body)
	}

	req, _ := http.NewRequest(http.MethodGet, baseURL+"/vendor/users/designer", nil)
	req.Header.Set("Authorization", "Bearer "+parsed.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("vendor users by category: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("vendor users by category status %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, baseURL+"/vendor/users/pilot", nil)
	req.Header.Set("Authorization", "Bearer "+parsed.Token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("vendor invalid category: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", resp.StatusCode)
	}
}

func createEmployer(t *testing.T, baseURL, email, password string, suffix int64) {
	t.Helper()

	status, body := postJSON(t, baseURL+"/employer/create", map[string]any{
		"firstName":   "Erin",
		"lastName":    "Employer",
		"email":       email,
		"password":    password,
		"mobile":      fmt.Sprintf("8%09d", suffix%1000000000),
		"companyName": "Acme Care",
		"companyAddress": map[string]string{
			"city": "Pune", "state": "MH", "country": "IN", "pincode": "411001",
		},
	}, "")
	if status != http.StatusCreated {
		t.Fatalf("create employer status %d: %s", status, body)
	}
}

func loginSuperAdmin(t *testing.T, baseURL string) string {
	t.Helper()

	status, body := postJSON(t, baseURL+"/superadmin/login", map[string]string{
		"email": superAdminEmail, "password": superAdminPassword,
	}, "")
	if status != http.StatusOK {
		t.Fatalf("superadmin login status %d: %s", status, body)
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil || parsed.Token == "" {
		t.Fatalf("missing superadmin token: %s", body)
	}
	return parsed.Token
}

func loginEmployer(t *testing.T, baseURL, email, password string) string {
	t.Helper()

	status, body := postJSON(t, baseURL+"/employer/login", map[string]string{
		"email": email, "password": password,
	}, "")
	if status != http.StatusOK {
		t.Fatalf("employer login status %d: %s", status, body)
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil || parsed.Token == "" {
		t.Fatalf("missing employer token: %s", body)
	}
	return parsed.Token
}

func findEmployerID(t *testing.T, baseURL, email string) string {
	t.Helper()

	resp, err := http.Get(baseURL + "/employer/get")
	if err != nil {
		t.Fatalf("list employers: %v", err)
	}
	defer resp.Body.Close()

	var employers []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&employers); err != nil {
		t.Fatalf("decode employers: %v", err)
	}
	for _, employer := range employers {
		if employer.Email == email {
			return employer.ID
		}
	}
	t.Fatalf("employer %s not found in listing", email)
	return ""
}

func postJSON(t *testing.T, url string, payload any, token string) (int, string) {
	t.Helper()
	return doJSON(t, http.MethodPost, url, payload, token)
}

func putJSON(t *testing.T, url string, payload any, token string) (int, string) {
	t.Helper()
	return doJSON(t, http.MethodPut, url, payload, token)
}

func doJSON(t *testing.T, method, url string, payload any, token string) (int, string) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, strings.TrimSpace(string(data))
}

func waitForMongo(ctx context.Context) error {
	setServerEnv()
	cfg := config.LoadConfig()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		openCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		database, err := db.Open(openCtx, cfg)
		cancel()
		if err == nil {
			_ = db.Close(context.Background(), database)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("mongo ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func bootstrapSuperAdmin(ctx context.Context) error {
	setServerEnv()
	cfg := config.LoadConfig()

	database, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close(context.Background(), database)
	}()

	service := services.NewSuperAdminService(store.NewSuperAdminRepository(database))
	_, err = service.Bootstrap(ctx, "Super", "Admin", superAdminEmail, superAdminPassword)
	return err
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func setServerEnv() {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("MONGO_URI", "mongodb://localhost:27017")
	_ = os.Setenv("MONGO_DB", "jobpilot_e2e")
	_ = os.Setenv("MAIL_PROVIDER", "smtp")
	_ = os.Setenv("MAIL_FROM", "noreply@example.com")
	_ = os.Setenv("SMTP_HOST", "localhost")
	_ = os.Setenv("SMTP_PORT", "1025")
}

func startServer() (*server.Server, error) {
	setServerEnv()

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
