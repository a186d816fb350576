// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/unanimy/models"
	"github.com/danielhkuo/unanimy/testutil"
)

// TestConcurrentClose verifies that racing closers produce exactly one
// transition and exactly one result
func TestConcurrentClose(t *testing.T) {
	env := setupHandlers(t)
	td := testutil.CreateTestDecision(t, env.st, env.cfg, testutil.DecisionOpts{Options: 3})
	testutil.CastTestVote(t, env.st, td.OrganizerID, td.OptionIDs[2], 2)

	const attempts = 8
	var winners, failures atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := withID(testutil.MakeRequest("POST", "/decisions/"+td.ID+"/close", nil, organizer(td.OrganizerKey)), td.ID)
			w := httptest.NewRecorder()
			env.decisions.Close(w, req)

			if w.Code != http.StatusOK {
				failures.Add(1)
				return
			}
			var resp models.CloseResponse
			json.NewDecoder(w.Body).Decode(&resp)
			if !resp.AlreadyClosed {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("Expected every close to succeed, %d failed", failures.Load())
	}
	if winners.Load() != 1 {
		t.Errorf("Expected exactly one close to win, got %d", winners.Load())
	}

	r, err := env.st.GetResult(context.Background(), td.ID)
	if err != nil {
		t.Fatalf("Expected a result: %v", err)
	}
	if r.WinningDecisionItemID != td.OptionIDs[2] {
		t.Errorf("Expected winner %s, got %s", td.OptionIDs[2], r.WinningDecisionItemID)
	}
}

// TestConcurrentCompleteAndClose races the last completion against an
// organizer close. Whichever lands first closes; the other sees it closed.
func TestConcurrentCompleteAndClose(t *testing.T) {
	env := setupHandlers(t)
	td := testutil.CreateTestDecision(t, env.st, env.cfg, testutil.DecisionOpts{Options: 2})
	_, memberToken := testutil.AddTestMember(t, env.st, td.ID)

	w := httptest.NewRecorder()
	env.decisions.Complete(w, completeRequest(td.ID, td.OrganizerToken))
	testutil.AssertStatus(t, w, http.StatusOK)

	var completeResp models.CompleteResponse
	var closeResp models.CloseResponse
	var completeCode, closeCode int
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		w := httptest.NewRecorder()
		env.decisions.Complete(w, completeRequest(td.ID, memberToken))
		completeCode = w.Code
		json.NewDecoder(w.Body).Decode(&completeResp)
	}()
	go func() {
		defer wg.Done()
		req := withID(testutil.MakeRequest("POST", "/decisions/"+td.ID+"/close", nil, organizer(td.OrganizerKey)), td.ID)
		w := httptest.NewRecorder()
		env.decisions.Close(w, req)
		closeCode = w.Code
		json.NewDecoder(w.Body).Decode(&closeResp)
	}()
	wg.Wait()

	if completeCode != http.StatusOK || closeCode != http.StatusOK {
		t.Fatalf("Expected both requests to succeed, got complete=%d close=%d", completeCode, closeCode)
	}

	d, _ := env.st.GetDecision(context.Background(), td.ID)
	if d.Status != models.StatusClosed {
		t.Errorf("Expected closed decision, got %s", d.Status)
	}
	if _, err := env.st.GetResult(context.Background(), td.ID); err != nil {
		t.Errorf("Expected exactly one stored result: %v", err)
	}
}

// TestConcurrentVotes verifies simultaneous votes from many participants are
// all stored
func TestConcurrentVotes(t *testing.T) {
	env := setupHandlers(t)
	td := testutil.CreateTestDecision(t, env.st, env.cfg, testutil.DecisionOpts{Options: 3})

	const members = 10
	ids := make([]string, members)
	tokens := make([]string, members)
	for i := range tokens {
		ids[i], tokens[i] = testutil.AddTestMember(t, env.st, td.ID)
	}

	var failures atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < members; i++ {
		for j, optionID := range td.OptionIDs {
			wg.Add(1)
			go func(token, optionID string, value int) {
				defer wg.Done()
				w := httptest.NewRecorder()
				env.decisions.CastVote(w, voteRequest(td.ID, token, map[string]interface{}{
					"decisionItemId": optionID,
					"vote":           value,
				}))
				if w.Code != http.StatusOK {
					failures.Add(1)
				}
			}(tokens[i], optionID, (i+j)%5-2)
		}
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("Expected all votes to succeed, %d failed", failures.Load())
	}

	for i, id := range ids {
		votes, err := env.st.ListParticipantVotes(context.Background(), id)
		if err != nil {
			t.Fatalf("Failed to list votes: %v", err)
		}
		if len(votes) != len(td.OptionIDs) {
			t.Errorf("Member %d: expected %d votes, got %d", i, len(td.OptionIDs), len(votes))
		}
	}
}

// TestConcurrentJoins verifies simultaneous joins each get a distinct token
func TestConcurrentJoins(t *testing.T) {
	env := setupHandlers(t)
	td := testutil.CreateTestDecision(t, env.st, env.cfg, testutil.DecisionOpts{Options: 1})

	const joiners = 10
	tokens := make(chan string, joiners)
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			env.join.Join(w, testutil.MakeRequest("POST", "/join", models.JoinRequest{Code: td.JoinCode}, nil))
			if w.Code != http.StatusOK {
				return
			}
			var resp models.JoinResponse
			json.NewDecoder(w.Body).Decode(&resp)
			tokens <- resp.ParticipantToken
		}()
	}
	wg.Wait()
	close(tokens)

	seen := make(map[string]bool)
	for token := range tokens {
		if seen[token] {
			t.Errorf("Duplicate participant token %s", token)
		}
		seen[token] = true
	}
	if len(seen) != joiners {
		t.Errorf("Expected %d joins, got %d", joiners, len(seen))
	}

	counts, err := env.st.CountParticipants(context.Background(), td.ID)
	if err != nil {
		t.Fatalf("Failed to count participants: %v", err)
	}
	if counts.Participants != joiners+1 {
		t.Errorf("Expected %d participants, got %d", joiners+1, counts.Participants)
	}
}
