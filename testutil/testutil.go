// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crowdcheck/crowdcheck/auth"
	"github.com/crowdcheck/crowdcheck/cliparse"
	"github.com/crowdcheck/crowdcheck/db"
	_ "modernc.org/sqlite"
)

// TestAdminKey is the admin key used by GetTestConfig.
const TestAdminKey = "test-admin-key"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// The connection pool is pinned to a single connection; each :memory: open
// would otherwise see its own empty database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3418,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		AdminKey:     TestAdminKey,
		IPHashSalt:   "test-ip-salt",
	}
}

// CreateTestArticle inserts an article and returns its ID
func CreateTestArticle(t *testing.T, conn *sql.DB, title string) string {
	t.Helper()

	articleID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO article (id, title, url, description, submitter, created_at)
		VALUES ($1, $2, 'https://news.example/story', 'A test article', 'TestUser', $3)
	`, articleID, title, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test article: %v", err)
	}

	return articleID
}

// CreateTestVoter returns a fresh voter token
func CreateTestVoter(t *testing.T) string {
	t.Helper()

	voterToken, err := auth.GenerateVoterToken()
	if err != nil {
		t.Fatalf("Failed to generate voter token: %v", err)
	}
	return voterToken
}

// CastTestVote appends a ledger row and returns the vote ID.
// result should be "fake" or "non-fake".
func CastTestVote(t *testing.T, conn *sql.DB, articleID, voterToken, result string) string {
	t.Helper()

	voteID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO vote (id, article_id, voter_token, result, invalidated, submitted_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`, voteID, articleID, voterToken, result, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return voteID
}

// CastTestVotes appends fake "fake" and nonFake "non-fake" votes from
// distinct voters and returns the vote IDs in insertion order.
func CastTestVotes(t *testing.T, conn *sql.DB, articleID string, fake, nonFake int) []string {
	t.Helper()

	ids := make([]string, 0, fake+nonFake)
	for i := 0; i < fake; i++ {
		ids = append(ids, CastTestVote(t, conn, articleID, CreateTestVoter(t), "fake"))
	}
	for i := 0; i < nonFake; i++ {
		ids = append(ids, CastTestVote(t, conn, articleID, CreateTestVoter(t), "non-fake"))
	}
	return ids
}

// InvalidateTestVote marks a ledger row invalidated directly
func InvalidateTestVote(t *testing.T, conn *sql.DB, voteID string) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE vote SET invalidated = TRUE, invalidated_at = $1 WHERE id = $2
	`, time.Now().UTC(), voteID)
	if err != nil {
		t.Fatalf("Failed to invalidate test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
