package introspect

// The schema argument of every query may be empty, meaning the
// connection's current database.

const queryColumns = `
	SELECT CHARACTER_SET_NAME, COLLATION_NAME, COLUMN_DEFAULT, COLUMN_KEY,
	       COLUMN_NAME, COLUMN_TYPE, EXTRA, IS_NULLABLE
	FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
	  AND TABLE_NAME   = ?
	ORDER BY COLUMN_NAME`

const queryColumn = `
	SELECT CHARACTER_SET_NAME, COLLATION_NAME, COLUMN_DEFAULT, COLUMN_KEY,
	       COLUMN_NAME, COLUMN_TYPE, EXTRA, IS_NULLABLE
	FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
	  AND TABLE_NAME   = ?
	  AND COLUMN_NAME  = ?`

// COLUMN_NAME is NULL for functional key parts (MySQL 8.0.13+).
const queryIndexes = `
	SELECT COALESCE(COLUMN_NAME, ''), INDEX_NAME, INDEX_TYPE, NON_UNIQUE,
	       SEQ_IN_INDEX, SUB_PART
	FROM information_schema.STATISTICS
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
	  AND TABLE_NAME   = ?
	ORDER BY INDEX_NAME, SEQ_IN_INDEX`

const queryIndex = `
	SELECT COALESCE(COLUMN_NAME, ''), INDEX_NAME, INDEX_TYPE, NON_UNIQUE,
	       SEQ_IN_INDEX, SUB_PART
	FROM information_schema.STATISTICS
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
	  AND TABLE_NAME   = ?
	  AND INDEX_NAME   = ?
	ORDER BY SEQ_IN_INDEX`

const queryTables = `
	SELECT ENGINE, TABLE_COLLATION, TABLE_NAME
	FROM information_schema.TABLES
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
	  AND TABLE_TYPE   = 'BASE TABLE'
	ORDER BY TABLE_NAME`

const queryTable = `
	SELECT ENGINE, TABLE_COLLATION, TABLE_NAME
	FROM information_schema.TABLES
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
	  AND TABLE_TYPE   = 'BASE TABLE'
	  AND TABLE_NAME   = ?`
