package seed

import (
	"fmt"

	"acervo/internal/models"

	"gorm.io/gorm"
)

// BuiltInCommunity is a course or research group present in every deployment.
type BuiltInCommunity struct {
	Name        string
	Description string
}

// BuiltInCommunities lists the permanent communities posts can be tagged with.
var BuiltInCommunities = []BuiltInCommunity{
	{Name: "Agronomia", Description: "Trabalhos do curso de Agronomia."},
	{Name: "Ciência da Computação", Description: "Projetos e monografias de computação."},
	{Name: "Engenharia Civil", Description: "Estruturas, materiais e construção."},
	{Name: "Licenciatura em Química", Description: "Ensino e pesquisa em química."},
	{Name: "Medicina Veterinária", Description: "Saúde animal e produção."},
	{Name: "Grupo de Pesquisa em Robótica", Description: "Robótica educacional e automação."},
}

// Communities seeds the built-in communities. Existing rows with the same name are kept.
func Communities(db *gorm.DB) error {
	for _, item := range BuiltInCommunities {
		community := models.Community{Name: item.Name}
		err := db.Where("name = ?", item.Name).
			Attrs(models.Community{Description: item.Description}).
			FirstOrCreate(&community).Error
		if err != nil {
			return fmt.Errorf("seed community %q: %w", item.Name, err)
		}
	}
	return nil
}
