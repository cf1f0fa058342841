// Package database opens the sqlite database behind the structured word
// store.
//
// # Layout
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── favourites/      # Favorite word records (wordstore.Backend)
//
// # Usage
//
//	db, err := database.Open("./favorite_words.db", database.Options{})
//	repo := favourites.NewRepository(db)
//	err = repo.Add(ctx, &entities.WordRecord{Word: "cat"})
//
// Connections use WAL journaling and gorm's error translation, so unique
// violations surface as gorm.ErrDuplicatedKey.
package database
