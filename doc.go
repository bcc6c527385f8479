package geomap

// This package defines common methods and operations for overlaying small rendered maps, centered on a photo's EXIF GPS coordinates, on that photo. Common operations include: Deriving coordinates from EXIF tags, rendering map insets, compositing insets on photos and gathering photos from buckets.
