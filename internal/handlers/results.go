package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// The shapes below match what the Node driver returns, which existing
// clients read.

func insertResult(res *mongo.InsertOneResult) gin.H {
	return gin.H{"acknowledged": true, "insertedId": res.InsertedID}
}

func updateResult(res *mongo.UpdateResult) gin.H {
	return gin.H{
		"acknowledged":  true,
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
		"upsertedCount": res.UpsertedCount,
		"upsertedId":    res.UpsertedID,
	}
}

func deleteResult(res *mongo.DeleteResult) gin.H {
	return gin.H{"acknowledged": true, "deletedCount": res.DeletedCount}
}
