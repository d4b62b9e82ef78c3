package store

// FileOption configures file creation options.
type FileOption func(*fileOptions)

type fileOptions struct {
	compressionLvl int
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{
		compressionLvl: 0,
	}
}

// WithCompression sets the default gzip compression level (1-9, 0 = none)
// applied to datasets created in this file. Individual datasets may
// override it with WithDatasetCompression.
func WithCompression(level int) FileOption {
	return func(o *fileOptions) {
		if level >= 0 && level <= 9 {
			o.compressionLvl = level
		}
	}
}

// DatasetOption configures dataset creation options.
type DatasetOption func(*datasetOptions)

// attrDef holds an attribute definition for creation.
type attrDef struct {
	name  string
	value interface{}
}

type datasetOptions struct {
	shape          []int
	chunkElems     int
	compressionLvl int
	attributes     []attrDef
}

func defaultDatasetOptions(file *fileOptions) *datasetOptions {
	return &datasetOptions{
		chunkElems:     DefaultChunkElems,
		compressionLvl: file.compressionLvl,
	}
}

// WithShape sets the dataset dimensions. The product of the dimensions must
// equal the number of elements supplied. Defaults to a 1-D shape.
func WithShape(dims ...int) DatasetOption {
	return func(o *datasetOptions) {
		o.shape = dims
	}
}

// WithChunkElems sets the number of elements stored per chunk.
func WithChunkElems(n int) DatasetOption {
	return func(o *datasetOptions) {
		if n > 0 {
			o.chunkElems = n
		}
	}
}

// WithDatasetCompression sets the gzip compression level (1-9, 0 = none)
// for this dataset, overriding the file default.
func WithDatasetCompression(level int) DatasetOption {
	return func(o *datasetOptions) {
		if level >= 0 && level <= 9 {
			o.compressionLvl = level
		}
	}
}

// WithAttr adds an attribute to the dataset at creation time.
// The value must be a string, int64, or float64.
func WithAttr(name string, value interface{}) DatasetOption {
	return func(o *datasetOptions) {
		o.attributes = append(o.attributes, attrDef{name: name, value: value})
	}
}
