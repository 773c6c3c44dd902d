package backend

import (
	"context"
	"net/http"
)

// Profile is the signed-in operator's account as the backend reports it.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type profileWire struct {
	ID             int64  `json:"id"`
	Usuario        string `json:"usuario"`
	Rol            string `json:"rol"`
	NombreCompleto string `json:"nombre_completo"`
	Email          string `json:"email"`
	Telefono       string `json:"telefono"`
	FotoPerfil     string `json:"foto_perfil"`
}

func (w profileWire) profile() Profile {
	return Profile{
		ID:       w.ID,
		Username: w.Usuario,
		Role:     w.Rol,
		FullName: w.NombreCompleto,
		Email:    w.Email,
		Phone:    w.Telefono,
		PhotoURL: w.FotoPerfil,
	}
}

func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var w profileWire
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/perfil"}, &w); err != nil {
		return Profile{}, err
	}
	return w.profile(), nil
}

type ProfileUpdate struct {
	FullName string
	Email    string
	Phone    string
	// Photo is optional; PhotoName carries the original file name.
	Photo     []byte
	PhotoName string
}

// UpdateProfile sends the profile as multipart form data so a photo can ride
// along.
func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (Profile, error) {
	form := &Multipart{Fields: map[string]string{
		"nombre_completo": u.FullName,
		"email":           u.Email,
		"telefono":        u.Phone,
	}}
	if len(u.Photo) > 0 {
		form.Files = append(form.Files, File{Field: "foto_perfil", Name: u.PhotoName, Content: u.Photo})
	}
	var w profileWire
	if _, err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/api/perfil", Body: form}, &w); err != nil {
		return Profile{}, err
	}
	return w.profile(), nil
}
