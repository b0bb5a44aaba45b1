// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/campaignwatch/internal/models"
)

var testEpoch = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func testPost(id, author, text string, at time.Time) models.Post {
	return models.Post{
		Platform:  "twitter",
		PostID:    id,
		AuthorRef: author,
		Text:      text,
		PostedAt:  models.NewTimestamp(at),
	}
}

// hourlyPosts emits counts[h] posts spread across hour h after testEpoch.
func hourlyPosts(counts []int) []models.Post {
	posts := make([]models.Post, 0)
	for h, c := range counts {
		for j := 0; j < c; j++ {
			at := testEpoch.Add(time.Duration(h)*time.Hour + time.Duration(j)*(time.Hour/time.Duration(c)))
			posts = append(posts, testPost(
				fmt.Sprintf("p-%d-%d", h, j),
				fmt.Sprintf("author-%d", j%7),
				fmt.Sprintf("update %d from hour %d", j, h),
				at,
			))
		}
	}
	return posts
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v)
}
