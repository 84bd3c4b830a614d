package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strconv"
)

// ItemUpload is the multipart form for creating or updating a menu item.
// Zero-valued optional fields are omitted from the form so a PATCH only
// touches what the caller set.
type ItemUpload struct {
	Name         string
	Price        int64
	Description  string
	Available    *bool
	RestaurantID int64
	// ImageName/Image carry the optional item image. ImageName supplies the
	// filename for the form part.
	ImageName string
	Image     []byte
}

// encode renders the upload as a multipart body and its content type.
func (u ItemUpload) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{}
	if u.Name != "" {
		fields["item_name"] = u.Name
	}
	if u.Price > 0 {
		fields["item_price"] = strconv.FormatInt(u.Price, 10)
	}
	if u.Description != "" {
		fields["item_description"] = u.Description
	}
	if u.Available != nil {
		fields["available"] = strconv.FormatBool(*u.Available)
	}
	if u.RestaurantID > 0 {
		fields["of_restraunt"] = strconv.FormatInt(u.RestaurantID, 10)
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if len(u.Image) > 0 {
		name := filepath.Base(u.ImageName)
		if name == "." || name == "/" {
			name = "item.jpg"
		}
		part, err := w.CreateFormFile("item_image", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(u.Image); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	if buf.Len() == 0 {
		return nil, "", fmt.Errorf("empty item upload")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
