package api

import (
	"context"
	"fmt"
	"net/http"
)

// Resource methods. Each one builds a fixed endpoint path and delegates
// to Call; records pass through as opaque mappings.

// GetStats returns record counts for the catalog.
func (c *Client) GetStats(ctx context.Context) (Record, error) {
	res, err := c.Call(ctx, apiPrefix+"stats/", nil, http.MethodGet)
	return asRecord(res), err
}

// GetMakes returns all makes.
func (c *Client) GetMakes(ctx context.Context) ([]Record, error) {
	res, err := c.Call(ctx, apiPrefix+"makes/", nil, http.MethodGet)
	return asRecords(res), err
}

// GetMakeDetails returns one make including its related cameras.
func (c *Client) GetMakeDetails(ctx context.Context, makeID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"makes/%d", makeID), nil, http.MethodGet)
	return asRecord(res), err
}

// AddMake creates a make. A non-nil logo switches the request to a
// multipart upload.
func (c *Client) AddMake(ctx context.Context, data Record, logo *File) (Record, error) {
	if logo != nil {
		res, err := c.upload(ctx, apiPrefix+"makes/", data, "logo", logo, http.MethodPost)
		return asRecord(res), err
	}
	res, err := c.Call(ctx, apiPrefix+"makes/", data, http.MethodPost)
	return asRecord(res), err
}

// UpdateMake updates a make and returns the updated record.
func (c *Client) UpdateMake(ctx context.Context, makeID int, data Record, logo *File) (Record, error) {
	endpoint := fmt.Sprintf(apiPrefix+"makes/%d", makeID)
	var res any
	var err error
	if logo != nil {
		res, err = c.upload(ctx, endpoint, data, "logo", logo, http.MethodPatch)
	} else {
		res, err = c.Call(ctx, endpoint, data, http.MethodPatch)
	}
	return asRecord(envelopeField(res, "make")), err
}

// DeleteMake deletes a make.
func (c *Client) DeleteMake(ctx context.Context, makeID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"makes/%d", makeID), Record{}, http.MethodDelete)
	return asRecord(res), err
}

// GetCameras returns all cameras.
func (c *Client) GetCameras(ctx context.Context) ([]Record, error) {
	res, err := c.Call(ctx, apiPrefix+"cameras/", nil, http.MethodGet)
	return asRecords(res), err
}

// FindCameras searches cameras by free-text query. An empty query
// returns an empty list without a round-trip.
func (c *Client) FindCameras(ctx context.Context, query string) ([]Record, error) {
	if query == "" {
		return []Record{}, nil
	}
	res, err := c.Call(ctx, apiPrefix+"cameras/search", Record{"q": query}, http.MethodGet)
	return asRecords(res), err
}

// GetCameraDetails returns one camera including its formats.
func (c *Client) GetCameraDetails(ctx context.Context, cameraID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"cameras/%d", cameraID), nil, http.MethodGet)
	return asRecord(res), err
}

// AddCamera creates a camera. A non-nil image switches the request to a
// multipart upload.
func (c *Client) AddCamera(ctx context.Context, data Record, image *File) (Record, error) {
	if image != nil {
		res, err := c.upload(ctx, apiPrefix+"cameras/", data, "image", image, http.MethodPost)
		return asRecord(res), err
	}
	res, err := c.Call(ctx, apiPrefix+"cameras/", data, http.MethodPost)
	return asRecord(res), err
}

// UpdateCamera updates a camera and returns the updated record.
func (c *Client) UpdateCamera(ctx context.Context, cameraID int, data Record, image *File) (Record, error) {
	endpoint := fmt.Sprintf(apiPrefix+"cameras/%d", cameraID)
	var res any
	var err error
	if image != nil {
		res, err = c.upload(ctx, endpoint, data, "image", image, http.MethodPatch)
	} else {
		res, err = c.Call(ctx, endpoint, data, http.MethodPatch)
	}
	return asRecord(envelopeField(res, "camera")), err
}

// DeleteCamera deletes a camera.
func (c *Client) DeleteCamera(ctx context.Context, cameraID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"cameras/%d", cameraID), Record{}, http.MethodDelete)
	return asRecord(res), err
}

// GetFormats returns all recording formats.
func (c *Client) GetFormats(ctx context.Context) ([]Record, error) {
	res, err := c.Call(ctx, apiPrefix+"formats/", nil, http.MethodGet)
	return asRecords(res), err
}

// FindFormats searches formats. The query is an arbitrary set of filter
// fields forwarded as query parameters.
func (c *Client) FindFormats(ctx context.Context, query Record) ([]Record, error) {
	if len(query) == 0 {
		return []Record{}, nil
	}
	res, err := c.Call(ctx, apiPrefix+"formats/search", query, http.MethodGet)
	return asRecords(res), err
}

// GetFormatDetails returns one format.
func (c *Client) GetFormatDetails(ctx context.Context, formatID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"formats/%d", formatID), nil, http.MethodGet)
	return asRecord(res), err
}

// AddFormat creates a format.
func (c *Client) AddFormat(ctx context.Context, data Record) (Record, error) {
	res, err := c.Call(ctx, apiPrefix+"formats/", data, http.MethodPost)
	return asRecord(res), err
}

// UpdateFormat updates a format and returns the updated record.
func (c *Client) UpdateFormat(ctx context.Context, formatID int, data Record) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"formats/%d", formatID), data, http.MethodPatch)
	return asRecord(envelopeField(res, "format")), err
}

// DeleteFormat deletes a format.
func (c *Client) DeleteFormat(ctx context.Context, formatID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"formats/%d", formatID), Record{}, http.MethodDelete)
	return asRecord(res), err
}

// GetProjects returns all projects.
func (c *Client) GetProjects(ctx context.Context) ([]Record, error) {
	res, err := c.Call(ctx, apiPrefix+"projects/", nil, http.MethodGet)
	return asRecords(res), err
}

// FindProjects searches projects by free-text query. An empty query
// returns an empty list without a round-trip.
func (c *Client) FindProjects(ctx context.Context, query string) ([]Record, error) {
	if query == "" {
		return []Record{}, nil
	}
	res, err := c.Call(ctx, apiPrefix+"projects/search", Record{"q": query}, http.MethodGet)
	return asRecords(envelopeField(res, "projects")), err
}

// GetProjectDetails returns one project including attached formats.
func (c *Client) GetProjectDetails(ctx context.Context, projectID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"projects/%d", projectID), nil, http.MethodGet)
	return asRecord(res), err
}

// AddTMDBProject imports a project from TMDB. projectType is "feature"
// or "episodic".
func (c *Client) AddTMDBProject(ctx context.Context, tmdbID int, projectType string) (Record, error) {
	payload := Record{"tmdbId": tmdbID, "projectType": projectType}
	res, err := c.Call(ctx, apiPrefix+"projects/", payload, http.MethodPost)
	return asRecord(res), err
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, projectID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"projects/%d", projectID), Record{}, http.MethodDelete)
	return asRecord(res), err
}

// AddFormatToProject attaches a format to a project.
func (c *Client) AddFormatToProject(ctx context.Context, projectID, formatID int) (Record, error) {
	endpoint := fmt.Sprintf(apiPrefix+"projects/%d/formats/", projectID)
	res, err := c.Call(ctx, endpoint, Record{"formatId": formatID}, http.MethodPost)
	return asRecord(res), err
}

// VoteOnProjectFormat votes on a format attached to a project. vote is
// "up" or "down".
func (c *Client) VoteOnProjectFormat(ctx context.Context, projectID, formatID int, vote string) (Record, error) {
	endpoint := fmt.Sprintf(apiPrefix+"projects/%d/formats/%d", projectID, formatID)
	res, err := c.Call(ctx, endpoint, Record{"vote": vote}, http.MethodPatch)
	return asRecord(res), err
}

// GetSources returns all citation sources.
func (c *Client) GetSources(ctx context.Context) ([]Record, error) {
	res, err := c.Call(ctx, apiPrefix+"sources/", nil, http.MethodGet)
	return asRecords(res), err
}

// GetSourceDetails returns one source.
func (c *Client) GetSourceDetails(ctx context.Context, sourceID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"sources/%d", sourceID), nil, http.MethodGet)
	return asRecord(res), err
}

// AddSource creates a source and returns the new record.
func (c *Client) AddSource(ctx context.Context, data Record) (Record, error) {
	res, err := c.Call(ctx, apiPrefix+"sources/", data, http.MethodPost)
	return asRecord(envelopeField(res, "source")), err
}

// UpdateSource updates a source and returns the updated record.
func (c *Client) UpdateSource(ctx context.Context, sourceID int, data Record) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"sources/%d", sourceID), data, http.MethodPatch)
	return asRecord(envelopeField(res, "source")), err
}

// DeleteSource deletes a source.
func (c *Client) DeleteSource(ctx context.Context, sourceID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"sources/%d", sourceID), Record{}, http.MethodDelete)
	return asRecord(res), err
}

// Signup registers a new user account.
func (c *Client) Signup(ctx context.Context, userData Record) (Record, error) {
	res, err := c.Call(ctx, apiPrefix+"users/", userData, http.MethodPost)
	return asRecord(res), err
}

// Login authenticates and returns the issued bearer token. The caller
// (the auth session manager) is responsible for configuring the token
// on this client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload := Record{"username": username, "password": password}
	res, err := c.Call(ctx, apiPrefix+"users/auth", payload, http.MethodPost)
	if err != nil {
		return "", err
	}
	token, _ := asRecord(res)["token"].(string)
	return token, nil
}

// Logout invalidates the server-side session. The local session is
// owned by the auth session manager and cleared there.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Call(ctx, apiPrefix+"users/auth", Record{}, http.MethodDelete)
	return err
}

// GetUser returns one user profile.
func (c *Client) GetUser(ctx context.Context, userID int) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"users/%d", userID), nil, http.MethodGet)
	return asRecord(res), err
}

// UpdateUser updates a user profile.
func (c *Client) UpdateUser(ctx context.Context, userID int, data Record) (Record, error) {
	res, err := c.Call(ctx, fmt.Sprintf(apiPrefix+"users/%d", userID), data, http.MethodPatch)
	return asRecord(envelopeField(res, "user")), err
}

func asRecord(v any) Record {
	if m, ok := v.(Record); ok {
		return m
	}
	return nil
}

func asRecords(v any) []Record {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(Record); ok {
			out = append(out, m)
		}
	}
	return out
}

// envelopeField unwraps a mutation envelope like {"success": ...,
// "make": {...}}; responses without the key pass through unchanged.
func envelopeField(v any, key string) any {
	if m, ok := v.(Record); ok {
		if inner, ok := m[key]; ok {
			return inner
		}
	}
	return v
}
