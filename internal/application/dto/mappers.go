package dto

import (
	"github.com/jhoicas/sistema-ventas/internal/domain/entity"
)

// UserFromEntity convierte un usuario de dominio en su salida pública.
func UserFromEntity(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UsersFromEntities convierte una lista de usuarios.
func UsersFromEntities(list []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *UserFromEntity(u))
	}
	return out
}

// DataURL arma "data:<mime>;base64,<b64>"; vacío si falta el contenido.
func DataURL(mime, b64 string) string {
	if b64 == "" {
		return ""
	}
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + b64
}

// UploadsPrefix ruta pública de las imágenes guardadas en el almacén.
const UploadsPrefix = "/static/uploads/"

// ProductFromEntity convierte un producto de dominio. La imagen embebida tiene prioridad
// sobre la persistida en el almacén.
func ProductFromEntity(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	imageURL := DataURL(p.ImageMIME, p.ImageB64)
	if imageURL == "" && p.ImageLocal != "" {
		imageURL = UploadsPrefix + p.ImageLocal
	}
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Features:    p.Features,
		Price:       p.Price,
		Stock:       p.Stock,
		Critical:    p.IsCritical(),
		Size:        p.Size,
		ProductType: p.ProductType,
		Brand:       p.Brand,
		Gender:      p.Gender,
		Barcode:     p.Barcode,
		ImageURL:    imageURL,
		QRURL:       DataURL(p.QRMIME, p.QRB64),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProductsFromEntities convierte una lista de productos.
func ProductsFromEntities(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *ProductFromEntity(p))
	}
	return out
}
