package portal

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"

	"github.com/SundayYogurt/lending_portal/internal/api/apitest"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/require"
)

type harness struct {
	env    *apitest.Env
	client *Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	env := apitest.New(t)
	srv := httptest.NewServer(adaptor.FiberApp(env.App))
	t.Cleanup(srv.Close)

	return &harness{
		env:    env,
		client: NewClient(srv.URL+"/api", WithHTTPClient(srv.Client())),
	}
}

func (h *harness) register(t *testing.T, email string) dto.MemberResponse {
	t.Helper()
	form := &RegistrationForm{
		Name:                 "Rina Wijaya",
		Email:                email,
		Phone:                "081355550000",
		Password:             "password123",
		PasswordConfirmation: "password123",
	}
	m, err := form.Submit(context.Background(), h.client)
	require.NoError(t, err)
	return m
}

func (h *harness) login(t *testing.T, email string) *Session {
	t.Helper()
	s, err := Login(context.Background(), h.client, email, "password123")
	require.NoError(t, err)
	return s
}

func (h *harness) adminSession(t *testing.T) *Session {
	t.Helper()
	m := h.register(t, "admin@portal.test")
	h.env.Promote(t, m.ID)
	return h.login(t, "admin@portal.test")
}

func pngFile(t *testing.T, name string) *File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &File{Name: name, MIMEType: "image/png", Data: buf.Bytes()}
}

func fillKYC(t *testing.T, f *KYCForm) {
	t.Helper()
	f.Update(func(v *KYCFields) {
		v.NationalID = "3273010101900002"
		v.Name = "Rina Wijaya"
		v.Address = "Jl. Asia Afrika 8, Bandung"
		v.Phone = "081355550000"
	})
	require.NoError(t, f.AttachFiles(context.Background(), pngFile(t, "ktp.png"), pngFile(t, "selfie.png")))
}
