// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{"rfc3339", `"2024-08-30T14:00:00Z"`, true, time.Date(2024, 8, 30, 14, 0, 0, 0, time.UTC)},
		{"offset", `"2024-08-30T19:30:00+05:30"`, true, time.Date(2024, 8, 30, 14, 0, 0, 0, time.UTC)},
		{"naive", `"2024-08-30T14:00:00"`, true, time.Date(2024, 8, 30, 14, 0, 0, 0, time.UTC)},
		{"space separated", `"2024-08-30 14:00:00"`, true, time.Date(2024, 8, 30, 14, 0, 0, 0, time.UTC)},
		{"date only", `"2024-08-30"`, true, time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)},
		{"unix seconds", `1725026400`, true, time.Date(2024, 8, 30, 14, 0, 0, 0, time.UTC)},
		{"null", `null`, false, time.Time{}},
		{"empty", `""`, false, time.Time{}},
		{"garbage", `"not a date"`, false, time.Time{}},
		{"wrong type", `true`, false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			if err := ts.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("UnmarshalJSON returned error: %v", err)
			}
			if ts.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v", ts.Valid, tt.wantValid)
			}
			if tt.wantValid && !ts.Time.Equal(tt.want) {
				t.Errorf("Time = %v, want %v", ts.Time, tt.want)
			}
		})
	}
}

func TestPost_MalformedTimestampDoesNotFailDecode(t *testing.T) {
	raw := `{"post_id":"p1","author_ref":"a1","text":"hello","posted_at":"yesterday-ish","likes":3}`

	var p Post
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.HasTimestamp() {
		t.Error("expected malformed timestamp to be invalid")
	}
	if p.Likes != 3 || p.Text != "hello" {
		t.Errorf("other fields not decoded: %+v", p)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back map[string]interface{}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal round trip: %v", err)
	}
	if back["posted_at"] != nil {
		t.Errorf("posted_at = %v, want null", back["posted_at"])
	}
}

func TestDeriveAuthors_FirstSeenWins(t *testing.T) {
	posts := []Post{
		{Platform: "twitter", PostID: "1", AuthorRef: "alice"},
		{Platform: "twitter", PostID: "2", AuthorRef: "bob", Author: &Author{Username: "bob_real", FollowersCount: 10}},
		{Platform: "twitter", PostID: "3", AuthorRef: "alice", Author: &Author{Username: "alice_first", FollowersCount: 5}},
		{Platform: "twitter", PostID: "4", AuthorRef: "alice", Author: &Author{Username: "alice_second", FollowersCount: 99}},
		{Platform: "reddit", PostID: "5", AuthorRef: "alice"},
		{Platform: "twitter", PostID: "6", AuthorRef: ""},
	}

	authors := DeriveAuthors(posts)
	if len(authors) != 3 {
		t.Fatalf("len(authors) = %d, want 3", len(authors))
	}
	if authors[0].UserID != "alice" || authors[0].Username != "alice_first" || authors[0].FollowersCount != 5 {
		t.Errorf("authors[0] = %+v, want first embedded alice profile", authors[0])
	}
	if authors[1].Username != "bob_real" || authors[1].Platform != "twitter" {
		t.Errorf("authors[1] = %+v", authors[1])
	}
	if authors[2].Platform != "reddit" || authors[2].Username != "alice" {
		t.Errorf("authors[2] = %+v, want minimal reddit alice", authors[2])
	}
}

func TestAuthor_Owns(t *testing.T) {
	a := Author{Platform: "twitter", UserID: "u1"}
	if !a.Owns(&Post{Platform: "Twitter", AuthorRef: "u1"}) {
		t.Error("expected case-insensitive platform match")
	}
	if a.Owns(&Post{Platform: "reddit", AuthorRef: "u1"}) {
		t.Error("expected platform mismatch")
	}
	if a.Owns(&Post{Platform: "twitter", AuthorRef: "u2"}) {
		t.Error("expected ref mismatch")
	}
	anyPlatform := Author{UserID: "u1"}
	if !anyPlatform.Owns(&Post{Platform: "reddit", AuthorRef: "u1"}) {
		t.Error("author without platform should match any platform")
	}
}

func TestAuthor_AccountAgeDays(t *testing.T) {
	ref := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	a := Author{AccountCreatedAt: NewTimestamp(ref.Add(-36*24*time.Hour - 5*time.Hour))}
	if got := a.AccountAgeDays(ref); got != 36 {
		t.Errorf("AccountAgeDays = %v, want 36", got)
	}
	var unknown Author
	if got := unknown.AccountAgeDays(ref); got != 0 {
		t.Errorf("AccountAgeDays(unknown) = %v, want 0", got)
	}
	future := Author{AccountCreatedAt: NewTimestamp(ref.Add(time.Hour))}
	if got := future.AccountAgeDays(ref); got != 0 {
		t.Errorf("AccountAgeDays(future) = %v, want 0", got)
	}
}

func TestLatestTimestamp(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []Post{
		{PostedAt: NewTimestamp(base)},
		{PostedAt: Timestamp{}},
		{PostedAt: NewTimestamp(base.Add(3 * time.Hour))},
	}
	if got := LatestTimestamp(posts); !got.Equal(base.Add(3 * time.Hour)) {
		t.Errorf("LatestTimestamp = %v", got)
	}
	if got := LatestTimestamp(nil); !got.IsZero() {
		t.Errorf("LatestTimestamp(nil) = %v, want zero", got)
	}
}
