package gateway

import (
	"context"
	"fmt"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
)

const documentFields = `
      documento_id
      nombre_archivo
      estado
      score_plagio
      page_count
      word_count
      analysis_duration_ms`

const projectFields = `
      proyecto_id
      nombre
      usuario_id
      organizacion_id`

var (
	queryGetDocument = `query GetDocumento($id: Int!) {
    getDocumento(id: $id) {` + documentFields + `
    }
  }`

	queryGetProject = `query GetProyecto($id: Int!) {
    getProyecto(id: $id) {` + projectFields + `
      documentos {` + documentFields + `
      }
    }
  }`

	queryProjectsByUser = `query GetProyectosPorUsuario($usuario_id: Int!) {
    getProyectosPorUsuario(usuario_id: $usuario_id) {` + projectFields + `
    }
  }`

	queryProjectsByUserAndOrganization = `query GetProyectosPorUsuarioYOrganizacion($usuario_id: Int!, $organizacion_id: String!) {
    getProyectosPorUsuarioYOrganizacion(usuario_id: $usuario_id, organizacion_id: $organizacion_id) {` + projectFields + `
    }
  }`

	queryProjectsByOrganization = `query GetProyectosPorOrganizacion($organizacion_id: String!) {
    getProyectosPorOrganizacion(organizacion_id: $organizacion_id) {` + projectFields + `
    }
  }`

	mutationCreateProject = `mutation CrearProyecto($nombre: String!, $usuario_id: Int!, $organizacion_id: String) {
    crearProyecto(nombre: $nombre, usuario_id: $usuario_id, organizacion_id: $organizacion_id) {` + projectFields + `
    }
  }`

	mutationUpdateProject = `mutation ActualizarProyecto($id: Int!, $nombre: String!) {
    actualizarProyecto(id: $id, nombre: $nombre) {` + projectFields + `
    }
  }`

	mutationDeleteProject = `mutation EliminarProyecto($id: Int!) {
    eliminarProyecto(id: $id)
  }`

	mutationDeleteDocument = `mutation EliminarDocumento($id: Int!) {
    eliminarDocumento(id: $id)
  }`
)

// GetDocument fetches the current status of one document. Metrics are
// cleared unless the document is COMPLETADO.
func (c *Client) GetDocument(ctx context.Context, id entity.ID) (*entity.Document, error) {
	var out struct {
		Document *entity.Document `json:"getDocumento"`
	}
	if err := c.graphql(ctx, "getDocumento", queryGetDocument, map[string]interface{}{"id": id.GraphQLValue()}, &out); err != nil {
		return nil, err
	}
	if out.Document == nil {
		return nil, fmt.Errorf("getDocumento %s: %w", id, ErrNotFound)
	}
	out.Document.Sanitize()
	return out.Document, nil
}

func (c *Client) GetProject(ctx context.Context, id entity.ID) (*entity.Project, error) {
	var out struct {
		Project *entity.Project `json:"getProyecto"`
	}
	if err := c.graphql(ctx, "getProyecto", queryGetProject, map[string]interface{}{"id": id.GraphQLValue()}, &out); err != nil {
		return nil, err
	}
	if out.Project == nil {
		return nil, fmt.Errorf("getProyecto %s: %w", id, ErrNotFound)
	}
	for i := range out.Project.Documents {
		out.Project.Documents[i].Sanitize()
	}
	return out.Project, nil
}

func (c *Client) ListProjectsByUser(ctx context.Context, userID int64) ([]entity.Project, error) {
	var out struct {
		Projects []entity.Project `json:"getProyectosPorUsuario"`
	}
	vars := map[string]interface{}{"usuario_id": userID}
	if err := c.graphql(ctx, "getProyectosPorUsuario", queryProjectsByUser, vars, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Projects), nil
}

func (c *Client) ListProjectsByUserAndOrganization(ctx context.Context, userID int64, organizationID string) ([]entity.Project, error) {
	var out struct {
		Projects []entity.Project `json:"getProyectosPorUsuarioYOrganizacion"`
	}
	vars := map[string]interface{}{"usuario_id": userID, "organizacion_id": organizationID}
	if err := c.graphql(ctx, "getProyectosPorUsuarioYOrganizacion", queryProjectsByUserAndOrganization, vars, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Projects), nil
}

func (c *Client) ListProjectsByOrganization(ctx context.Context, organizationID string) ([]entity.Project, error) {
	var out struct {
		Projects []entity.Project `json:"getProyectosPorOrganizacion"`
	}
	vars := map[string]interface{}{"organizacion_id": organizationID}
	if err := c.graphql(ctx, "getProyectosPorOrganizacion", queryProjectsByOrganization, vars, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Projects), nil
}

type CreateProjectInput struct {
	Name           string
	UserID         int64
	OrganizationID string
}

func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*entity.Project, error) {
	vars := map[string]interface{}{
		"nombre":     in.Name,
		"usuario_id": in.UserID,
	}
	if in.OrganizationID != "" {
		vars["organizacion_id"] = in.OrganizationID
	}

	var out struct {
		Project *entity.Project `json:"crearProyecto"`
	}
	if err := c.graphql(ctx, "crearProyecto", mutationCreateProject, vars, &out); err != nil {
		return nil, err
	}
	if out.Project == nil {
		return nil, malformed("crearProyecto", nil)
	}
	return out.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id entity.ID, name string) (*entity.Project, error) {
	vars := map[string]interface{}{"id": id.GraphQLValue(), "nombre": name}

	var out struct {
		Project *entity.Project `json:"actualizarProyecto"`
	}
	if err := c.graphql(ctx, "actualizarProyecto", mutationUpdateProject, vars, &out); err != nil {
		return nil, err
	}
	if out.Project == nil {
		return nil, fmt.Errorf("actualizarProyecto %s: %w", id, ErrNotFound)
	}
	return out.Project, nil
}

// DeleteProject reports whether the gateway removed the project. Its
// documents are removed server-side.
func (c *Client) DeleteProject(ctx context.Context, id entity.ID) (bool, error) {
	var out struct {
		Deleted bool `json:"eliminarProyecto"`
	}
	if err := c.graphql(ctx, "eliminarProyecto", mutationDeleteProject, map[string]interface{}{"id": id.GraphQLValue()}, &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id entity.ID) (bool, error) {
	var out struct {
		Deleted bool `json:"eliminarDocumento"`
	}
	if err := c.graphql(ctx, "eliminarDocumento", mutationDeleteDocument, map[string]interface{}{"id": id.GraphQLValue()}, &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

func nonNil(projects []entity.Project) []entity.Project {
	if projects == nil {
		return []entity.Project{}
	}
	return projects
}
