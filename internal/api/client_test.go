// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/tigerwatch/internal/types"
)

func TestCreateInvestigation(t *testing.T) {
	var gotReq types.CreateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/investigations" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(types.CreateResponse{ID: "inv-42"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.CreateInvestigation(context.Background(), &types.CreateRequest{
		Title:    "Check Facility X permits",
		Priority: "high",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != "inv-42" {
		t.Errorf("expected inv-42, got %s", resp.ID)
	}
	if gotReq.Title != "Check Facility X permits" {
		t.Errorf("unexpected title: %s", gotReq.Title)
	}
}

func TestCreateInvestigationMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.CreateInvestigation(context.Background(), &types.CreateRequest{Title: "x"})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Errorf("expected ServerError for missing id, got %v", err)
	}
}

func TestValidationErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "title required"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.CreateInvestigation(context.Background(), &types.CreateRequest{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", ve.StatusCode)
	}
	if Message(err) != "title required" {
		t.Errorf("unexpected message: %q", Message(err))
	}
}

func TestServerErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "agent pool unavailable"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.LaunchInvestigation(context.Background(), &types.LaunchRequest{InvestigationID: "inv-1"})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", se.StatusCode)
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	// Port 1 is never listening
	client := NewClient("http://127.0.0.1:1")
	_, err := client.GetTools(context.Background())
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Errorf("expected NetworkError, got %v", err)
	}
}

func TestSubmitApproval(t *testing.T) {
	var gotPath string
	var gotDecision types.ApprovalDecision
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotDecision); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.SubmitApproval(context.Background(), "apr-7", &types.ApprovalDecision{
		Approved: true,
		Message:  "go ahead",
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/approvals/apr-7" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if !gotDecision.Approved || gotDecision.Message != "go ahead" {
		t.Errorf("unexpected decision: %+v", gotDecision)
	}
}

func TestGetTools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tools" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"servers": {"records": {"description": "registries", "tools": [
			{"name": "permit_lookup", "description": "Look up facility permits"}
		]}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	catalog, err := client.GetTools(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog.Servers["records"].Tools) != 1 {
		t.Errorf("expected 1 tool, got %d", len(catalog.Servers["records"].Tools))
	}
}
