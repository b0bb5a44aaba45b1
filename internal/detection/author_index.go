// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"strings"

	"github.com/tomtom215/campaignwatch/internal/models"
)

// authorIndex resolves posts to their authors and mentions to author nodes.
type authorIndex struct {
	authors []models.Author
	keys    []string
	posts   [][]models.Post
	handles map[string]int
}

func newAuthorIndex(authors []models.Author, posts []models.Post) *authorIndex {
	ix := &authorIndex{
		authors: authors,
		keys:    make([]string, len(authors)),
		posts:   make([][]models.Post, len(authors)),
		handles: make(map[string]int, len(authors)*2),
	}
	byID := make(map[string][]int, len(authors))
	for i := range authors {
		a := &authors[i]
		ix.keys[i] = a.Key()
		byID[a.UserID] = append(byID[a.UserID], i)
		for _, h := range []string{a.UserID, a.Username} {
			h = normalizeHandle(h)
			if h == "" {
				continue
			}
			if _, taken := ix.handles[h]; !taken {
				ix.handles[h] = i
			}
		}
	}
	for i := range posts {
		p := &posts[i]
		for _, ai := range byID[p.AuthorRef] {
			if authors[ai].Owns(p) {
				ix.posts[ai] = append(ix.posts[ai], *p)
				break
			}
		}
	}
	return ix
}

// resolveMention returns the author index a mention refers to, or -1.
func (ix *authorIndex) resolveMention(mention string) int {
	if i, ok := ix.handles[normalizeHandle(mention)]; ok {
		return i
	}
	return -1
}

func normalizeHandle(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
}
