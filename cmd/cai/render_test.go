package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/agentinsights/internal/insights"
	"github.com/fyrsmithlabs/agentinsights/internal/records"
	"github.com/fyrsmithlabs/agentinsights/internal/vectorstore"
)

func TestWriteLearningHit(t *testing.T) {
	var buf bytes.Buffer
	st := newStyles(&buf)

	writeLearningHit(&buf, st, insights.Hit{Score: 0.8712, Learning: &records.LearningRow{
		Type: "fix", Content: "set busy_timeout", Tags: []string{"sqlite", "go"},
	}})
	writeLearningHit(&buf, st, insights.Hit{Score: 0.5, Learning: &records.LearningRow{
		Type: "pattern", Content: "no tags", Tags: []string{},
	}})

	assert.Equal(t, "[fix] (score: 0.87)\n  set busy_timeout\n  Tags: sqlite, go\n\n"+
		"[pattern] (score: 0.50)\n  no tags\n\n", buf.String())
}

func TestWriteSessionHit(t *testing.T) {
	var buf bytes.Buffer
	summary, outcome := "Fixed locking", "success"

	writeSessionHit(&buf, newStyles(&buf), insights.Hit{Score: 0.42, Session: &records.Session{
		ID: "abcdef0123", ProjectPath: "/work/app", Summary: &summary, Outcome: &outcome,
	}})

	assert.Equal(t, "[session abcdef01] (score: 0.42)\n  Project: /work/app\n  Fixed locking\n  Outcome: success\n\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	newProgressBar(&buf).report(insights.Progress{Kind: vectorstore.KindSession, Done: 32, Total: 64})
	assert.Contains(t, buf.String(), "  Sessions: 32/64 ")
	assert.Contains(t, buf.String(), "50%")
}

func TestEmbedKinds(t *testing.T) {
	kinds, err := embedKinds("all")
	assert.NoError(t, err)
	assert.Equal(t, []vectorstore.Kind{vectorstore.KindLearning, vectorstore.KindSession}, kinds)

	kinds, err = embedKinds("sessions")
	assert.NoError(t, err)
	assert.Equal(t, []vectorstore.Kind{vectorstore.KindSession}, kinds)

	_, err = embedKinds("commits")
	assert.ErrorIs(t, err, vectorstore.ErrUnknownKind)
}
