// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/promptsmith/promptsmith-api/db"
	"github.com/promptsmith/promptsmith-api/db/mocks"
	apierrors "github.com/promptsmith/promptsmith-api/internal/errors"
	"github.com/promptsmith/promptsmith-api/internal/helper"
	"github.com/promptsmith/promptsmith-api/models"
)

var adTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testAd(id string, active bool) models.Advertisement {
	return models.Advertisement{
		ID:          id,
		Title:       "Write better prompts",
		Description: "PromptSmith Pro",
		MediaType:   "image",
		MediaUrl:    "https://cdn.example.com/banner.png",
		TargetLink:  "https://example.com",
		ButtonText:  "Try it",
		IsActive:    active,
		CreatedAt:   db.NewTimestamptz(adTime),
		UpdatedAt:   db.NewTimestamptz(adTime.Add(time.Hour)),
	}
}

func newAdFixture(t *testing.T) (*echo.Echo, *mocks.Querier) {
	t.Helper()
	q := mocks.NewQuerier(t)
	ctr := NewAdvertisementController(q)

	e := echo.New()
	e.Validator = helper.NewValidator()
	e.GET("/ads", ctr.ListActiveAdvertisements)
	e.GET("/admin/ads", ctr.ListAdvertisements)
	e.POST("/ads", ctr.CreateAdvertisement)
	e.PUT("/ads/:id", ctr.UpdateAdvertisement)
	e.DELETE("/ads/:id", ctr.DeleteAdvertisement)
	return e, q
}

func serveJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListActiveAdvertisements(t *testing.T) {
	e, q := newAdFixture(t)
	q.On("ListActiveAdvertisements", mock.Anything).
		Return([]models.Advertisement{testAd("a1", true), testAd("a2", true)}, nil).Once()

	rec := serveJSON(e, http.MethodGet, "/ads", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AdvertisementListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Ads, 2)
	assert.Equal(t, "a1", resp.Ads[0].ID)
	assert.Equal(t, "https://cdn.example.com/banner.png", resp.Ads[0].MediaUrl)
	assert.True(t, resp.Ads[0].CreatedAt.Equal(adTime))
	assert.True(t, resp.Ads[0].UpdatedAt.Equal(adTime.Add(time.Hour)))

	assert.Contains(t, rec.Body.String(), `"mediaType":"image"`)
	assert.Contains(t, rec.Body.String(), `"isActive":true`)
}

func TestListAdvertisements_Empty(t *testing.T) {
	e, q := newAdFixture(t)
	q.On("ListAdvertisements", mock.Anything).Return([]models.Advertisement(nil), nil).Once()

	rec := serveJSON(e, http.MethodGet, "/admin/ads", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ads":[]}`, rec.Body.String())
}

func TestListAdvertisements_DatabaseError(t *testing.T) {
	e, q := newAdFixture(t)
	q.On("ListActiveAdvertisements", mock.Anything).Return(nil, errors.New("connection reset")).Once()

	rec := serveJSON(e, http.MethodGet, "/ads", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrCodeDatabase, body.Error.Code)
}

func TestCreateAdvertisement(t *testing.T) {
	e, q := newAdFixture(t)

	var params models.CreateAdvertisementParams
	q.On("CreateAdvertisement", mock.Anything, mock.AnythingOfType("models.CreateAdvertisementParams")).
		Run(func(args mock.Arguments) {
			params = args.Get(1).(models.CreateAdvertisementParams)
		}).
		Return(testAd("new-id", true), nil).Once()

	body := `{"title":"Write better prompts","description":"PromptSmith Pro","mediaType":"image",
		"mediaUrl":"data:image/png;base64,iVBORw0KGgo=","targetLink":"https://example.com","buttonText":"Try it"}`
	rec := serveJSON(e, http.MethodPost, "/ads", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Len(t, params.ID, 36)
	assert.True(t, params.IsActive)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", params.MediaUrl)

	var resp AdvertisementMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Ad)
	assert.Equal(t, "new-id", resp.Ad.ID)
}

func TestCreateAdvertisement_Inactive(t *testing.T) {
	e, q := newAdFixture(t)
	q.On("CreateAdvertisement", mock.Anything, mock.MatchedBy(func(p models.CreateAdvertisementParams) bool {
		return !p.IsActive
	})).Return(testAd("new-id", false), nil).Once()

	body := `{"title":"t","mediaType":"video","mediaUrl":"https://cdn.example.com/a.mp4","isActive":false}`
	rec := serveJSON(e, http.MethodPost, "/ads", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateAdvertisement_Invalid(t *testing.T) {
	e, q := newAdFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"mediaType":"image","mediaUrl":"https://x.example/a.png"}`},
		{"bad media type", `{"title":"t","mediaType":"gif","mediaUrl":"https://x.example/a.png"}`},
		{"bad media url", `{"title":"t","mediaType":"image","mediaUrl":"javascript:alert(1)"}`},
		{"malformed", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveJSON(e, http.MethodPost, "/ads", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	q.AssertNotCalled(t, "CreateAdvertisement", mock.Anything, mock.Anything)
}

func TestCreateAdvertisement_Conflict(t *testing.T) {
	e, q := newAdFixture(t)
	q.On("CreateAdvertisement", mock.Anything, mock.Anything).
		Return(models.Advertisement{}, &pgconn.PgError{Code: "23505", ConstraintName: "advertisements_pkey"}).Once()

	rec := serveJSON(e, http.MethodPost, "/ads", `{"title":"t","mediaType":"image","mediaUrl":"https://x.example/a.png"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateAdvertisement(t *testing.T) {
	e, q := newAdFixture(t)
	q.On("UpdateAdvertisement", mock.Anything, mock.MatchedBy(func(p models.UpdateAdvertisementParams) bool {
		return p.ID == "a1" &&
			p.Title.Valid && p.Title.String == "New title" &&
			p.IsActive.Valid && !p.IsActive.Bool &&
			!p.Description.Valid && !p.MediaUrl.Valid
	})).Return(testAd("a1", false), nil).Once()

	rec := serveJSON(e, http.MethodPut, "/ads/a1", `{"title":"New title","isActive":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AdvertisementMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.False(t, resp.Ad.IsActive)
}

func TestUpdateAdvertisement_NotFound(t *testing.T) {
	e, q := newAdFixture(t)
	q.On("UpdateAdvertisement", mock.Anything, mock.Anything).
		Return(models.Advertisement{}, pgx.ErrNoRows).Once()

	rec := serveJSON(e, http.MethodPut, "/ads/missing", `{"title":"x"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAdvertisement_Invalid(t *testing.T) {
	e, _ := newAdFixture(t)

	rec := serveJSON(e, http.MethodPut, "/ads/a1", `{"mediaType":"audio"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAdvertisement(t *testing.T) {
	e, q := newAdFixture(t)
	q.On("DeleteAdvertisement", mock.Anything, "a1").Return(int64(1), nil).Once()
	q.On("DeleteAdvertisement", mock.Anything, "gone").Return(int64(0), nil).Once()

	rec := serveJSON(e, http.MethodDelete, "/ads/a1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = serveJSON(e, http.MethodDelete, "/ads/gone", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestDeleteAdvertisement_DefaultAdSkipped(t *testing.T) {
	e, q := newAdFixture(t)

	rec := serveJSON(e, http.MethodDelete, "/ads/"+DefaultAdvertisementID, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"skipped":true}`, rec.Body.String())
	q.AssertNotCalled(t, "DeleteAdvertisement", mock.Anything, mock.Anything)
}
