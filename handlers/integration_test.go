// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/unanimy/models"
	"github.com/danielhkuo/unanimy/testutil"
)

// TestFullDecisionWorkflow walks one decision from creation to result:
// 1. Organizer creates a decision with three places
// 2. Two friends join with the code
// 3. Everyone votes, one friend vetoes the crowd favourite
// 4. Everyone completes; the last completion closes the decision
// 5. The stored result is served to participants
// 6. Late votes and closes see the closed state
func TestFullDecisionWorkflow(t *testing.T) {
	env := setupHandlers(t)

	// Step 1: create
	w := httptest.NewRecorder()
	env.decisions.Create(w, testutil.MakeRequest("POST", "/decisions", models.CreateDecisionRequest{
		Options: options("Pizza", "Sushi", "Tacos"),
	}, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create decision failed: %d - %s", w.Code, w.Body.String())
	}
	var created models.CreateDecisionResponse
	testutil.AssertJSON(t, w, &created)
	id := created.DecisionID
	pizza, sushi, tacos := created.Options[0].ID, created.Options[1].ID, created.Options[2].ID
	t.Logf("Step 1 - Created decision %s with code %s", id, created.JoinCode)

	// Step 2: join
	tokens := []string{created.ParticipantToken}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		env.join.Join(w, testutil.MakeRequest("POST", "/join", models.JoinRequest{Code: created.JoinCode}, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Step 2 - Join failed: %d - %s", w.Code, w.Body.String())
		}
		var joined models.JoinResponse
		testutil.AssertJSON(t, w, &joined)
		tokens = append(tokens, joined.ParticipantToken)
	}

	// Step 3: vote. Pizza has the highest total but is vetoed.
	ballots := []map[string]interface{}{
		{pizza: "Preferred", sushi: "Agree", tacos: "Neutral"},
		{pizza: 2, sushi: 0, tacos: -1},
		{pizza: "NoWay", sushi: "Neutral", tacos: "Agree"},
	}
	for i, ballot := range ballots {
		for itemID, v := range ballot {
			w := httptest.NewRecorder()
			env.decisions.CastVote(w, voteRequest(id, tokens[i], map[string]interface{}{"decisionItemId": itemID, "vote": v}))
			if w.Code != http.StatusOK {
				t.Fatalf("Step 3 - Vote failed: %d - %s", w.Code, w.Body.String())
			}
		}
	}

	// Organizer sees everyone joined, nobody done
	w = httptest.NewRecorder()
	env.decisions.Get(w, withID(testutil.MakeRequest("GET", "/decisions/"+id, nil, organizer(created.OrganizerKey)), id))
	testutil.AssertStatus(t, w, http.StatusOK)
	var view models.OrganizerView
	testutil.AssertJSON(t, w, &view)
	if view.Counts.Participants != 3 || view.Counts.Completed != 0 {
		t.Errorf("Expected 3 participants, 0 completed, got %+v", view.Counts)
	}

	// Step 4: complete
	for i, token := range tokens {
		w := httptest.NewRecorder()
		env.decisions.Complete(w, completeRequest(id, token))
		if w.Code != http.StatusOK {
			t.Fatalf("Step 4 - Complete failed: %d - %s", w.Code, w.Body.String())
		}
		var resp models.CompleteResponse
		testutil.AssertJSON(t, w, &resp)
		if last := i == len(tokens)-1; resp.AutoClosed != last {
			t.Errorf("Step 4 - participant %d: expected autoClosed=%v, got %v", i, last, resp.AutoClosed)
		}
	}

	// Step 5: result
	w = httptest.NewRecorder()
	env.decisions.Result(w, withID(testutil.MakeRequest("GET", "/decisions/"+id+"/result", nil, participant(tokens[1])), id))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Result failed: %d - %s", w.Code, w.Body.String())
	}
	var result models.ResultResponse
	testutil.AssertJSON(t, w, &result)

	var winner map[string]string
	if err := json.Unmarshal(result.Winner, &winner); err != nil {
		t.Fatalf("Step 5 - winner is not a snapshot: %s", result.Winner)
	}
	if winner["name"] != "Sushi" {
		t.Errorf("Step 5 - expected Sushi (Pizza vetoed), got %v", winner)
	}
	if result.Counts.Participants != 3 || result.Counts.Completed != 3 {
		t.Errorf("Step 5 - unexpected counts %+v", result.Counts)
	}

	// Step 6: closed state
	w = httptest.NewRecorder()
	env.decisions.CastVote(w, voteRequest(id, tokens[0], map[string]interface{}{"decisionItemId": tacos, "vote": 2}))
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = httptest.NewRecorder()
	env.decisions.Close(w, withID(testutil.MakeRequest("POST", "/decisions/"+id+"/close", nil, organizer(created.OrganizerKey)), id))
	testutil.AssertStatus(t, w, http.StatusOK)
	var closeResp models.CloseResponse
	testutil.AssertJSON(t, w, &closeResp)
	if !closeResp.AlreadyClosed {
		t.Error("Step 6 - expected alreadyClosed after auto close")
	}

	w = httptest.NewRecorder()
	env.join.Join(w, testutil.MakeRequest("POST", "/join", models.JoinRequest{Code: created.JoinCode}, nil))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestMostSatisfiedWorkflow(t *testing.T) {
	env := setupHandlers(t)
	td := testutil.CreateTestDecision(t, env.st, env.cfg, testutil.DecisionOpts{
		Algorithm: models.AlgorithmMostSatisfied,
		Options:   2,
	})
	memberID, _ := testutil.AddTestMember(t, env.st, td.ID)
	secondID, _ := testutil.AddTestMember(t, env.st, td.ID)

	// Option 0: one strong fan (total 2, one satisfied)
	// Option 1: two mild fans (total 2, two satisfied)
	testutil.CastTestVote(t, env.st, td.OrganizerID, td.OptionIDs[0], 2)
	testutil.CastTestVote(t, env.st, memberID, td.OptionIDs[1], 1)
	testutil.CastTestVote(t, env.st, secondID, td.OptionIDs[1], 1)

	w := httptest.NewRecorder()
	env.decisions.Close(w, withID(testutil.MakeRequest("POST", "/decisions/"+td.ID+"/close", nil, organizer(td.OrganizerKey)), td.ID))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	env.decisions.Result(w, withID(testutil.MakeRequest("GET", "/decisions/"+td.ID+"/result", nil, participant(td.OrganizerToken)), td.ID))
	testutil.AssertStatus(t, w, http.StatusOK)
	var result models.ResultResponse
	testutil.AssertJSON(t, w, &result)

	var winner map[string]string
	json.Unmarshal(result.Winner, &winner)
	if winner["name"] != "Place 2" {
		t.Errorf("Expected Place 2 to win on satisfied count, got %v", winner)
	}
	if result.Algorithm != models.AlgorithmMostSatisfied {
		t.Errorf("Expected most_satisfied, got %s", result.Algorithm)
	}
}
