// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"
	"github.com/twinj/uuid"

	"github.com/promptsmith/promptsmith-api/db"
	apierrors "github.com/promptsmith/promptsmith-api/internal/errors"
	"github.com/promptsmith/promptsmith-api/internal/helper"
	"github.com/promptsmith/promptsmith-api/internal/tracing"
	"github.com/promptsmith/promptsmith-api/models"
)

// DefaultAdvertisementID is the client side fallback ad. It never exists in storage and
// deleting it is a no-op.
const DefaultAdvertisementID = "default-ad"

// AdvertisementController serves the advertisement routes
type AdvertisementController struct {
	s models.Querier
}

// NewAdvertisementController returns a new AdvertisementController
func NewAdvertisementController(s models.Querier) *AdvertisementController {
	return &AdvertisementController{s: s}
}

// AdvertisementResponse is the JSON shape of an advertisement
type AdvertisementResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MediaType   string    `json:"mediaType"`
	MediaUrl    string    `json:"mediaUrl"`
	TargetLink  string    `json:"targetLink"`
	ButtonText  string    `json:"buttonText"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AdvertisementListResponse wraps a list of advertisements
type AdvertisementListResponse struct {
	Ads []AdvertisementResponse `json:"ads"`
}

// AdvertisementMutationResponse is returned by create and update
type AdvertisementMutationResponse struct {
	OK bool                   `json:"ok"`
	Ad *AdvertisementResponse `json:"ad"`
}

// AdvertisementDeleteResponse is returned by delete
type AdvertisementDeleteResponse struct {
	OK      bool `json:"ok"`
	Skipped bool `json:"skipped,omitempty"`
}

// CreateAdvertisementRequest holds a new advertisement
type CreateAdvertisementRequest struct {
	Title       string `json:"title"       validate:"required,max=200,nocontrolchars"`
	Description string `json:"description" validate:"max=2000"`
	MediaType   string `json:"mediaType"   validate:"required,mediatype"`
	MediaURL    string `json:"mediaUrl"    validate:"required,mediaurl"`
	TargetLink  string `json:"targetLink"  validate:"omitempty,http_url,max=2048"`
	ButtonText  string `json:"buttonText"  validate:"max=100,nocontrolchars"`
	IsActive    *bool  `json:"isActive"`
}

// UpdateAdvertisementRequest holds a partial update; absent fields are left unchanged
type UpdateAdvertisementRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=200,nocontrolchars"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	MediaType   *string `json:"mediaType"   validate:"omitempty,mediatype"`
	MediaURL    *string `json:"mediaUrl"    validate:"omitempty,mediaurl"`
	TargetLink  *string `json:"targetLink"  validate:"omitempty,http_url,max=2048"`
	ButtonText  *string `json:"buttonText"  validate:"omitempty,max=100,nocontrolchars"`
	IsActive    *bool   `json:"isActive"`
}

var timestampConverter = copier.TypeConverter{
	SrcType: pgtype.Timestamptz{},
	DstType: time.Time{},
	Fn: func(src interface{}) (interface{}, error) {
		ts, ok := src.(pgtype.Timestamptz)
		if !ok {
			return nil, fmt.Errorf("unexpected timestamp type %T", src)
		}
		return db.TimeOrZero(ts), nil
	},
}

// copyAdvertisements maps storage rows (a slice or a single row) to response DTOs
func copyAdvertisements(dst, src interface{}) error {
	return copier.CopyWithOption(dst, src, copier.Option{
		Converters: []copier.TypeConverter{timestampConverter},
	})
}

// ListActiveAdvertisements godoc
// @Summary List active advertisements
// @Description Returns the active advertisements, most recently updated first
// @Tags advertisements
// @Produce json
// @Success 200 {object} AdvertisementListResponse
// @Router /ads [get]
func (ctr *AdvertisementController) ListActiveAdvertisements(c echo.Context) error {
	ads, err := ctr.s.ListActiveAdvertisements(c.Request().Context())
	if err != nil {
		return apierrors.HandleDatabaseError(c, err)
	}
	return ctr.respondList(c, ads)
}

// ListAdvertisements godoc
// @Summary List all advertisements
// @Description Returns every advertisement, active or not, most recently updated first
// @Tags advertisements
// @Produce json
// @Success 200 {object} AdvertisementListResponse
// @Failure 401 {object} apierrors.ErrorResponse "Unauthorized"
// @Router /admin/ads [get]
// @Security AdminSession
func (ctr *AdvertisementController) ListAdvertisements(c echo.Context) error {
	ads, err := ctr.s.ListAdvertisements(c.Request().Context())
	if err != nil {
		return apierrors.HandleDatabaseError(c, err)
	}
	return ctr.respondList(c, ads)
}

func (ctr *AdvertisementController) respondList(c echo.Context, ads []models.Advertisement) error {
	tracing.NewTracedContext(c.Request().Context()).AddAttr("advertisement.count", len(ads))
	response := &AdvertisementListResponse{}
	if err := copyAdvertisements(&response.Ads, &ads); err != nil {
		return apierrors.HandleInternalError(c, err, "Failed to process advertisements")
	}
	if response.Ads == nil {
		response.Ads = []AdvertisementResponse{}
	}
	return c.JSON(http.StatusOK, response)
}

// CreateAdvertisement godoc
// @Summary Create advertisement
// @Description Creates an advertisement. isActive defaults to true.
// @Tags advertisements
// @Accept json
// @Produce json
// @Param data body CreateAdvertisementRequest true "Advertisement"
// @Success 201 {object} AdvertisementMutationResponse
// @Failure 400 {object} apierrors.ErrorResponse "Bad request"
// @Failure 401 {object} apierrors.ErrorResponse "Unauthorized"
// @Router /ads [post]
// @Security AdminSession
func (ctr *AdvertisementController) CreateAdvertisement(c echo.Context) error {
	logger := helper.GetRequestLogger(c)

	req := new(CreateAdvertisementRequest)
	if err := c.Bind(req); err != nil {
		return apierrors.HandleBadRequestError(c, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return apierrors.HandleValidationError(c, err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	params := models.CreateAdvertisementParams{
		ID:          uuid.NewV4().String(),
		Title:       req.Title,
		Description: req.Description,
		MediaType:   req.MediaType,
		MediaUrl:    req.MediaURL,
		TargetLink:  req.TargetLink,
		ButtonText:  req.ButtonText,
		IsActive:    isActive,
	}
	var ad models.Advertisement
	err := tracing.TraceAdvertisement(c.Request().Context(), params.ID, "create", func(ctx context.Context) error {
		var err error
		ad, err = ctr.s.CreateAdvertisement(ctx, params)
		return err
	})
	if err != nil {
		return apierrors.HandleDatabaseError(c, err)
	}

	logger.Info("Advertisement created", "adID", ad.ID)
	return ctr.respondMutation(c, http.StatusCreated, ad)
}

// UpdateAdvertisement godoc
// @Summary Update advertisement
// @Description Updates the given fields of an advertisement and bumps updatedAt
// @Tags advertisements
// @Accept json
// @Produce json
// @Param id path string true "Advertisement ID"
// @Param data body UpdateAdvertisementRequest true "Fields to update"
// @Success 200 {object} AdvertisementMutationResponse
// @Failure 400 {object} apierrors.ErrorResponse "Bad request"
// @Failure 401 {object} apierrors.ErrorResponse "Unauthorized"
// @Failure 404 {object} apierrors.ErrorResponse "Advertisement not found"
// @Router /ads/{id} [put]
// @Security AdminSession
func (ctr *AdvertisementController) UpdateAdvertisement(c echo.Context) error {
	logger := helper.GetRequestLogger(c)
	id := c.Param("id")

	req := new(UpdateAdvertisementRequest)
	if err := c.Bind(req); err != nil {
		return apierrors.HandleBadRequestError(c, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return apierrors.HandleValidationError(c, err)
	}

	params := models.UpdateAdvertisementParams{
		ID:          id,
		Title:       db.NewOptString(req.Title),
		Description: db.NewOptString(req.Description),
		MediaType:   db.NewOptString(req.MediaType),
		MediaUrl:    db.NewOptString(req.MediaURL),
		TargetLink:  db.NewOptString(req.TargetLink),
		ButtonText:  db.NewOptString(req.ButtonText),
		IsActive:    db.NewOptBool(req.IsActive),
	}
	var ad models.Advertisement
	err := tracing.TraceAdvertisement(c.Request().Context(), id, "update", func(ctx context.Context) error {
		var err error
		ad, err = ctr.s.UpdateAdvertisement(ctx, params)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return apierrors.HandleNotFoundError(c, "Advertisement")
	}
	if err != nil {
		return apierrors.HandleDatabaseError(c, err)
	}

	logger.Info("Advertisement updated", "adID", ad.ID)
	return ctr.respondMutation(c, http.StatusOK, ad)
}

func (ctr *AdvertisementController) respondMutation(c echo.Context, status int, ad models.Advertisement) error {
	response := &AdvertisementMutationResponse{OK: true, Ad: new(AdvertisementResponse)}
	if err := copyAdvertisements(response.Ad, &ad); err != nil {
		return apierrors.HandleInternalError(c, err, "Failed to process advertisement")
	}
	return c.JSON(status, response)
}

// DeleteAdvertisement godoc
// @Summary Delete advertisement
// @Description Deletes an advertisement. Deleting an unknown id succeeds; the default ad is skipped.
// @Tags advertisements
// @Produce json
// @Param id path string true "Advertisement ID"
// @Success 200 {object} AdvertisementDeleteResponse
// @Failure 401 {object} apierrors.ErrorResponse "Unauthorized"
// @Router /ads/{id} [delete]
// @Security AdminSession
func (ctr *AdvertisementController) DeleteAdvertisement(c echo.Context) error {
	id := c.Param("id")
	if id == DefaultAdvertisementID {
		return c.JSON(http.StatusOK, &AdvertisementDeleteResponse{OK: true, Skipped: true})
	}

	var deleted int64
	err := tracing.TraceAdvertisement(c.Request().Context(), id, "delete", func(ctx context.Context) error {
		var err error
		deleted, err = ctr.s.DeleteAdvertisement(ctx, id)
		return err
	})
	if err != nil {
		return apierrors.HandleDatabaseError(c, err)
	}

	helper.GetRequestLogger(c).Info("Advertisement deleted", "adID", id, "rows", deleted)
	return c.JSON(http.StatusOK, &AdvertisementDeleteResponse{OK: true})
}
