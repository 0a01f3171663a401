package main

import (
	"errors"
	"io"
	"testing"

	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/stretchr/testify/require"
)

func TestProduceNeedsHeadline(t *testing.T) {
	cmd := produceCMD(&rootOptions{})
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	require.EqualError(t, cmd.Execute(), "either --index or --title is required")
}

func TestFetchError(t *testing.T) {
	require.EqualError(t, fetchError(models.ErrMissingNewsKey), models.MissingNewsKeyMessage)
	require.EqualError(t, fetchError(models.ErrNoHeadlines), models.NoNewsMessage)

	cause := errors.New("newsapi returned status 401")
	err := fetchError(cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "No news found. Check your API key. (newsapi returned status 401)", err.Error())
}
