package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"smartinventory/internal/models"
	"smartinventory/pkg/database"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryInUse     = errors.New("category is referenced by products")
	ErrDuplicateCategory = errors.New("category name already exists")
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// DB is the part of the data access layer repositories use.
// *database.Manager satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, params database.Params, scan database.RowScanner) error
	QueryRow(ctx context.Context, sql string, params database.Params, dest ...any) error
	Exec(ctx context.Context, sql string, params database.Params) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error)
}

type categoryRepo struct {
	db DB
	sb sq.StatementBuilderType
}

func NewCategoryRepo(db DB) CategoryRepository {
	return &categoryRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.AtP),
	}
}

// bind renders a statement with @pN placeholders and the matching named params.
func bind(q sq.Sqlizer) (string, database.Params, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return "", nil, err
	}

	params := make(database.Params, len(args))
	for i, arg := range args {
		params[fmt.Sprintf("p%d", i+1)] = arg
	}
	return sqlStr, params, nil
}

func (r *categoryRepo) selectCategories() sq.SelectBuilder {
	return r.sb.
		Select(
			"c.category_id",
			"c.category_name",
			"c.description",
			"COUNT(p.product_id)",
			"c.created_at",
			"c.updated_at",
		).
		From("categories c").
		LeftJoin("products p ON p.category_id = c.category_id AND p.is_active").
		GroupBy("c.category_id")
}

func scanCategory(row pgx.CollectableRow, c *models.Category) error {
	return row.Scan(&c.CategoryID, &c.CategoryName, &c.Description, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt)
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	q := r.sb.
		Insert("categories").
		Columns("category_name", "description").
		Values(category.CategoryName, category.Description).
		Suffix("RETURNING category_id, created_at, updated_at")

	sqlStr, params, err := bind(q)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, sqlStr, params, &category.CategoryID, &category.CreatedAt, &category.UpdatedAt)
	return mapError(err)
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	sqlStr, params, err := bind(r.selectCategories().Where(sq.Eq{"c.category_id": id}))
	if err != nil {
		return nil, err
	}

	var category *models.Category
	err = r.db.Query(ctx, sqlStr, params, func(row pgx.CollectableRow) error {
		category = &models.Category{}
		return scanCategory(row, category)
	})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	q := r.sb.
		Update("categories").
		Set("category_name", category.CategoryName).
		Set("description", category.Description).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"category_id": category.CategoryID}).
		Suffix("RETURNING created_at, updated_at")

	sqlStr, params, err := bind(q)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, sqlStr, params, &category.CreatedAt, &category.UpdatedAt)
	return mapError(err)
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, params, err := bind(r.sb.Delete("categories").Where(sq.Eq{"category_id": id}))
	if err != nil {
		return err
	}

	affected, err := r.db.Exec(ctx, sqlStr, params)
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error) {
	q := r.selectCategories().OrderBy("c.category_name")

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		q = q.Where(sq.Or{
			sq.ILike{"c.category_name": pattern},
			sq.ILike{"c.description": pattern},
		})
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	sqlStr, params, err := bind(q)
	if err != nil {
		return nil, err
	}

	categories := []*models.Category{}
	err = r.db.Query(ctx, sqlStr, params, func(row pgx.CollectableRow) error {
		c := &models.Category{}
		if err := scanCategory(row, c); err != nil {
			return err
		}
		categories = append(categories, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCategoryNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrCategoryInUse, err)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", ErrDuplicateCategory, err)
		}
	}
	return err
}
