package domain

// Zona is a reference area places belong to.
type Zona struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// TipoLugar classifies a place (bar, museo, plaza...).
type TipoLugar struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// Lugar is a point of interest shown on the home carousel and managed by admins.
type Lugar struct {
	ID          int64      `json:"id"`
	Nombre      string     `json:"nombre"`
	Ubicacion   string     `json:"ubicacion,omitempty"`
	Descripcion string     `json:"descripcion,omitempty"`
	Imagen      string     `json:"imagen,omitempty"`
	Zona        *Zona      `json:"zona,omitempty"`
	TipoLugar   *TipoLugar `json:"tipoLugar,omitempty"`
}

// ZonaNombre returns the zone name, or "" when the place has none.
func (l Lugar) ZonaNombre() string {
	if l.Zona == nil {
		return ""
	}
	return l.Zona.Nombre
}
