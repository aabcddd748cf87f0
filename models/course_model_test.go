package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		name string
		from CourseStatus
		to   CourseStatus
		want bool
	}{
		{"draft to review", CourseDraft, CourseInReview, true},
		{"review to approved", CourseInReview, CourseApproved, true},
		{"review to rejected", CourseInReview, CourseRejected, true},
		{"approved to published", CourseApproved, CoursePublished, true},
		{"rejected back to draft", CourseRejected, CourseDraft, true},
		{"draft cannot publish directly", CourseDraft, CoursePublished, false},
		{"draft cannot approve itself", CourseDraft, CourseApproved, false},
		{"published is terminal", CoursePublished, CourseDraft, false},
		{"approved cannot regress", CourseApproved, CourseInReview, false},
		{"no self transition", CourseInReview, CourseInReview, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestClassIsOneOnOne(t *testing.T) {
	assert.True(t, (&Class{Name: "English 1-on-1"}).IsOneOnOne())
	assert.True(t, (&Class{Name: "IELTS 1-on-1 evening"}).IsOneOnOne())
	assert.False(t, (&Class{Name: "English Group A"}).IsOneOnOne())
}
