package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *SiteBuilderError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *SiteBuilderError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *SiteBuilderError {
	return New(CategoryValidation, SeverityError, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Page building errors

func SlugCollision(slug, first, second string) *SiteBuilderError {
	return New(CategoryValidation, SeverityError, "section names collide after slugging").
		WithContext("slug", slug).
		WithContext("first", first).
		WithContext("second", second)
}

// Content generation errors. Always recovered locally; callers substitute
// fallback prose and never surface these over HTTP.

func ContentGenerationFailed(section string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryContent, SeverityWarning, "content generation failed").
		WithContext("section", section)
}

// Asset errors

func AssetFetchFailed(assetID, source string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryAsset, SeverityWarning, "asset fetch failed").
		WithContext("asset_id", assetID).
		WithContext("source", source)
}

func AssetSaveFailed(assetID string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "asset save failed").
		WithContext("asset_id", assetID)
}

// Store errors

func StoreError(operation string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "site store operation failed").
		WithContext("operation", operation)
}

func EventLogError(operation string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryEventStore, SeverityError, "event log operation failed").
		WithContext("operation", operation)
}

func PageNotFound(filename string) *SiteBuilderError {
	return New(CategoryNotFound, SeverityError, "page not found").
		WithContext("filename", filename)
}

// Publish errors

func PublishFailed(dir string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryPublish, SeverityError, "publish failed").
		WithContext("dir", dir)
}

func InvalidationFailed(cause error) *SiteBuilderError {
	return Wrap(cause, CategoryPublish, SeverityError, "cache invalidation failed")
}

// Network errors

func NetworkTimeout(url string, cause error) *SiteBuilderError {
	return WrapRetryable(cause, CategoryNetwork, SeverityWarning, "network timeout").
		WithContext("url", url)
}

// Internal errors

func InternalError(message string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
