// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package models

import (
	"strings"
	"time"
)

// Post is a single social-media post.
//
// PostID is unique per Platform. AuthorRef references Author.UserID on the
// same platform. Author optionally embeds the collector's profile snapshot.
type Post struct {
	Platform  string    `json:"platform" validate:"omitempty,max=64"`
	PostID    string    `json:"post_id" validate:"required,max=256"`
	AuthorRef string    `json:"author_ref" validate:"required,max=256"`
	Text      string    `json:"text"`
	PostedAt  Timestamp `json:"posted_at"`
	Hashtags  []string  `json:"hashtags,omitempty"`
	Mentions  []string  `json:"mentions,omitempty"`
	URLs      []string  `json:"urls,omitempty"`
	Likes     int       `json:"likes" validate:"gte=0"`
	Shares    int       `json:"shares" validate:"gte=0"`
	Replies   int       `json:"replies" validate:"gte=0"`
	Language  string    `json:"language,omitempty"`
	Author    *Author   `json:"author,omitempty"`
}

// Engagement returns likes + shares + replies.
func (p *Post) Engagement() int {
	return p.Likes + p.Shares + p.Replies
}

// HasTimestamp reports whether PostedAt parsed.
func (p *Post) HasTimestamp() bool {
	return p.PostedAt.Valid
}

// Author is an account profile.
type Author struct {
	Platform         string    `json:"platform" validate:"omitempty,max=64"`
	UserID           string    `json:"user_id" validate:"required,max=256"`
	Username         string    `json:"username,omitempty"`
	FollowersCount   int       `json:"followers_count" validate:"gte=0"`
	FollowingCount   int       `json:"following_count" validate:"gte=0"`
	PostsCount       int       `json:"posts_count" validate:"gte=0"`
	Verified         bool      `json:"verified"`
	Bio              string    `json:"bio,omitempty"`
	Location         string    `json:"location,omitempty"`
	URL              string    `json:"url,omitempty"`
	ProfileImageURL  string    `json:"profile_image_url,omitempty"`
	AccountCreatedAt Timestamp `json:"account_created_at"`
}

// Key identifies the author across platforms.
func (a *Author) Key() string {
	return AuthorKey(a.Platform, a.UserID)
}

// Handle returns the username, falling back to the user ID.
func (a *Author) Handle() string {
	if a.Username != "" {
		return a.Username
	}
	return a.UserID
}

// Owns reports whether p was written by a. An author without a platform
// matches posts from any platform.
func (a *Author) Owns(p *Post) bool {
	if p.AuthorRef != a.UserID {
		return false
	}
	return a.Platform == "" || p.Platform == "" || strings.EqualFold(a.Platform, p.Platform)
}

// AccountAgeDays returns whole days between account creation and ref, or 0
// when the creation time is unknown or in the future.
func (a *Author) AccountAgeDays(ref time.Time) float64 {
	if !a.AccountCreatedAt.Valid || ref.IsZero() {
		return 0
	}
	d := ref.Sub(a.AccountCreatedAt.Time)
	if d <= 0 {
		return 0
	}
	return float64(int64(d.Hours() / 24))
}

// AuthorKey builds the platform-scoped author key.
func AuthorKey(platform, userID string) string {
	return strings.ToLower(platform) + ":" + userID
}

// PostAuthorKey returns the author key of p.
func PostAuthorKey(p *Post) string {
	return AuthorKey(p.Platform, p.AuthorRef)
}

// DeriveAuthors extracts one Author per distinct (platform, author_ref) in
// posts. The first post carrying an embedded profile wins; authors with no
// embedded profile get a minimal record whose username is the reference.
// Order follows first appearance.
func DeriveAuthors(posts []Post) []Author {
	index := make(map[string]int, len(posts))
	authors := make([]Author, 0)
	profiled := make(map[string]bool, len(posts))

	for i := range posts {
		p := &posts[i]
		if p.AuthorRef == "" {
			continue
		}
		key := PostAuthorKey(p)
		pos, seen := index[key]
		if seen && profiled[key] {
			continue
		}

		var a Author
		if p.Author != nil {
			a = *p.Author
			a.UserID = p.AuthorRef
			if a.Platform == "" {
				a.Platform = p.Platform
			}
			profiled[key] = true
		} else {
			if seen {
				continue
			}
			a = Author{Platform: p.Platform, UserID: p.AuthorRef, Username: p.AuthorRef}
		}

		if seen {
			authors[pos] = a
			continue
		}
		index[key] = len(authors)
		authors = append(authors, a)
	}
	return authors
}

// PostsByAuthor returns the subset of posts owned by a, in input order.
func PostsByAuthor(a *Author, posts []Post) []Post {
	out := make([]Post, 0)
	for i := range posts {
		if a.Owns(&posts[i]) {
			out = append(out, posts[i])
		}
	}
	return out
}

// LatestTimestamp returns the most recent valid PostedAt, or the zero time.
func LatestTimestamp(posts []Post) time.Time {
	var latest time.Time
	for i := range posts {
		if posts[i].PostedAt.Valid && posts[i].PostedAt.Time.After(latest) {
			latest = posts[i].PostedAt.Time
		}
	}
	return latest
}

// TimeSeriesBucket is one hour of a contiguous, zero-filled activity series.
type TimeSeriesBucket struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}
