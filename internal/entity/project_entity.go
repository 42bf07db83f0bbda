package entity

type Project struct {
	Id             ID         `json:"proyecto_id"`
	Name           string     `json:"nombre"`
	OwnerUserId    int64      `json:"usuario_id,omitempty"`
	OrganizationId string     `json:"organizacion_id,omitempty"`
	Documents      []Document `json:"documentos,omitempty"`
}

// FindDocument returns the index of the document with the given id, or -1.
func (p *Project) FindDocument(id ID) int {
	for i := range p.Documents {
		if p.Documents[i].Id == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so cached projects are never shared with callers.
func (p Project) Clone() Project {
	if p.Documents != nil {
		docs := make([]Document, len(p.Documents))
		copy(docs, p.Documents)
		p.Documents = docs
	}
	return p
}
