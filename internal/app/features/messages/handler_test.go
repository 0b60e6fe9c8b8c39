package messagesfeature_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	messagesfeature "github.com/convenehq/convene/internal/app/features/messages"
	messagestore "github.com/convenehq/convene/internal/app/store/messages"
	userstore "github.com/convenehq/convene/internal/app/store/users"
	"github.com/convenehq/convene/internal/domain/models"
	"github.com/convenehq/convene/internal/testutil"
)

type messageBody struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	Content    string `json:"content"`
	SenderName string `json:"senderName"`
}

func newTestHandler(t *testing.T) (*messagesfeature.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := messagesfeature.NewHandler(messagestore.New(db), userstore.New(db), zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func asUser(u models.User) testutil.TestUser {
	return testutil.UserFor(u.ID, u.Username, u.Role)
}

func TestSendMessage(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "alice")
	bob := fixtures.CreateMember(ctx, "bob")

	req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
		"recipientId": bob.ID.Hex(),
		"content":     "hello <b>bob</b>",
	})
	req = testutil.WithUser(req, asUser(alice))
	rec := httptest.NewRecorder()
	h.HandleSend(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	var got messageBody
	testutil.DecodeJSON(t, rec, &got)
	if got.Content != "hello bob" {
		t.Errorf("content: got %q, want markup stripped", got.Content)
	}
	if got.SenderName != "alice" {
		t.Errorf("senderName: got %q, want alice", got.SenderName)
	}
}

func TestSendMessage_Errors(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "alice")
	bob := fixtures.CreateMember(ctx, "bob")

	cases := []struct {
		name      string
		recipient string
		content   string
		want      int
	}{
		{"unknown recipient", primitive.NewObjectID().Hex(), "hi", http.StatusNotFound},
		{"malformed recipient id", "nope", "hi", http.StatusBadRequest},
		{"blank content", bob.ID.Hex(), "   ", http.StatusBadRequest},
		{"self message", alice.ID.Hex(), "hi me", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/api/messages", map[string]string{
				"recipientId": tc.recipient,
				"content":     tc.content,
			})
			req = testutil.WithUser(req, asUser(alice))
			rec := httptest.NewRecorder()
			h.HandleSend(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status: got %d, want %d (body: %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestConversation(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "alice")
	bob := fixtures.CreateMember(ctx, "bob")
	carol := fixtures.CreateMember(ctx, "carol")

	fixtures.CreateMessage(ctx, alice.ID, bob.ID, "hi bob")
	fixtures.CreateMessage(ctx, bob.ID, alice.ID, "hi alice")
	fixtures.CreateMessage(ctx, alice.ID, carol.ID, "hi carol")

	req := testutil.NewAuthenticatedRequest("GET", "/api/messages/x", asUser(alice))
	req = testutil.WithChiURLParam(req, "userId", bob.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleConversation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var got []messageBody
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("conversation: got %d messages, want 2 (carol's excluded)", len(got))
	}
	if got[0].Content != "hi bob" || got[0].SenderName != "alice" {
		t.Errorf("first message: %+v", got[0])
	}
	if got[1].Content != "hi alice" || got[1].SenderName != "bob" {
		t.Errorf("second message: %+v", got[1])
	}
}

func TestConversation_Empty(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "alice")

	req := testutil.NewAuthenticatedRequest("GET", "/api/messages/x", asUser(alice))
	req = testutil.WithChiURLParam(req, "userId", primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	h.HandleConversation(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var got []messageBody
	testutil.DecodeJSON(t, rec, &got)
	if len(got) != 0 {
		t.Errorf("expected empty conversation, got %+v", got)
	}
}
