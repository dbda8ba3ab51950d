package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
	"github.com/sngm3741/store-finder/api/internal/interfaces/http/common"
)

// Form field names used by the store form.
const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldTags        = "tags"
	fieldAddress     = "location[address]"
	fieldLng         = "location[coordinates][0]"
	fieldLat         = "location[coordinates][1]"
	fieldPhoto       = "photo"
)

// parseStoreForm reads a multipart (or urlencoded) store form. The body is capped
// at uploadMaxBytes; the photo, when present, is returned with the MIME type its
// part declared.
func (h *Handler) parseStoreForm(w http.ResponseWriter, r *http.Request) (application.StoreFields, *application.Upload, error) {
	if r.ContentLength > h.uploadMaxBytes {
		return application.StoreFields{}, nil, &http.MaxBytesError{Limit: h.uploadMaxBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes)

	err := r.ParseMultipartForm(h.uploadMaxBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return application.StoreFields{}, nil, err
	}

	fields := application.StoreFields{
		Name:        r.PostFormValue(fieldName),
		Description: r.PostFormValue(fieldDescription),
		Tags:        r.PostForm[fieldTags],
	}

	location, err := parseLocation(r)
	if err != nil {
		return application.StoreFields{}, nil, err
	}
	fields.Location = location

	upload, err := readPhoto(r)
	if err != nil {
		return application.StoreFields{}, nil, err
	}
	return fields, upload, nil
}

// parseLocation returns nil when the form carries no location at all.
func parseLocation(r *http.Request) (*application.LocationInput, error) {
	rawLng := strings.TrimSpace(r.PostFormValue(fieldLng))
	rawLat := strings.TrimSpace(r.PostFormValue(fieldLat))
	address := r.PostFormValue(fieldAddress)
	if rawLng == "" && rawLat == "" && strings.TrimSpace(address) == "" {
		return nil, nil
	}

	problems := map[string]string{}
	lng, ok := common.ParseFloat(rawLng)
	if !ok {
		problems["location.lng"] = "must be a number"
	}
	lat, ok := common.ParseFloat(rawLat)
	if !ok {
		problems["location.lat"] = "must be a number"
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems)
	}
	return &application.LocationInput{Lng: lng, Lat: lat, Address: address}, nil
}

func readPhoto(r *http.Request) (*application.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(fieldPhoto)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// ブラウザはファイル未選択でも空のパートを送ってくる。
	if header.Size == 0 && header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &application.Upload{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}
